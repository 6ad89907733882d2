package model

import (
	"time"
)

// Recommendation is the generated voting guidance for one question of one
// filing. The (FilingID, QuestionID) pair is unique; regeneration overwrites
// the previous row in place.
type Recommendation struct {
	ID                   uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	FilingID             uint64    `json:"filing_id" gorm:"not null;uniqueIndex:uk_recommendations_filing_question,priority:1"`
	QuestionID           uint64    `json:"question_id" gorm:"not null;uniqueIndex:uk_recommendations_filing_question,priority:2"`
	VotingRecommendation string    `json:"voting_recommendation" gorm:"size:16;not null"`
	Rationale            string    `json:"rationale" gorm:"type:text"`
	Citation             string    `json:"citation" gorm:"type:text"`
	Confidence           float64   `json:"confidence" gorm:"default:0"`
	CreatedAt            time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt            time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// RecommendationList contains a page of recommendations and the total count.
type RecommendationList struct {
	TotalCount int64             `json:"totalCount"`
	Items      []*Recommendation `json:"items"`
}

// TableName returns the table name for GORM.
func (r *Recommendation) TableName() string {
	return "recommendations"
}
