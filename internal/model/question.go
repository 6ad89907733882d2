package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Question recommendation enums produced by extraction. Anything outside
// these sets is normalized to the fallback value before storage.
const (
	RecommendationFor       = "For"
	RecommendationAgainst   = "Against"
	RecommendationAbstain   = "Abstain"
	RecommendationNotStated = "Not Stated"
)

// Question type enums.
const (
	QuestionTypeBoardComposition   = "board_composition"
	QuestionTypeCompensation       = "compensation"
	QuestionTypeShareholderRights  = "shareholder_rights"
	QuestionTypeEnvironmentSocial  = "environmental_social"
	QuestionTypeTransactions       = "transactions"
	QuestionTypeOther              = "other"
)

// Question is a single voting item extracted from a filing. It doubles as
// the work item for recommendation generation: the queue claims rows whose
// Status is still claimable.
//
// Embedding is nullable: extraction stores the question first and a later
// pass may attach the vector. Re-extraction must not erase a vector that is
// already present.
type Question struct {
	ID                    uint64           `json:"id" gorm:"primaryKey;autoIncrement"`
	FilingID              uint64           `json:"filing_id" gorm:"not null;uniqueIndex:uk_questions_filing_key,priority:1"`
	QuestionKey           string           `json:"question_key" gorm:"size:32;not null;uniqueIndex:uk_questions_filing_key,priority:2"`
	QuestionText          string           `json:"question_text" gorm:"type:text;not null"`
	BoardRecommendation   string           `json:"board_recommendation" gorm:"size:16"`
	QuestionType          string           `json:"question_type" gorm:"size:32"`
	IsShareholderProposal bool             `json:"is_shareholder_proposal" gorm:"default:false"`
	Embedding             *pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	Status                Status           `json:"status" gorm:"type:varchar(16);not null;default:'NEW';index:idx_questions_status"`
	LastAttempt           *time.Time       `json:"last_attempt,omitempty"`
	ErrorMsg              *string          `json:"error_msg,omitempty" gorm:"type:text"`
	CreatedAt             time.Time        `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt             time.Time        `json:"updated_at" gorm:"autoUpdateTime"`
}

// QuestionList contains a page of questions and the total row count.
type QuestionList struct {
	TotalCount int64       `json:"totalCount"`
	Items      []*Question `json:"items"`
}

// TableName returns the table name for GORM.
func (q *Question) TableName() string {
	return "questions"
}

// NormalizeRecommendation maps free-form model output onto the board
// recommendation enum, defaulting to "Not Stated".
func NormalizeRecommendation(s string) string {
	switch s {
	case RecommendationFor, RecommendationAgainst, RecommendationAbstain:
		return s
	}
	return RecommendationNotStated
}

// NormalizeQuestionType maps free-form model output onto the question type
// enum, defaulting to "other".
func NormalizeQuestionType(s string) string {
	switch s {
	case QuestionTypeBoardComposition, QuestionTypeCompensation,
		QuestionTypeShareholderRights, QuestionTypeEnvironmentSocial,
		QuestionTypeTransactions:
		return s
	}
	return QuestionTypeOther
}
