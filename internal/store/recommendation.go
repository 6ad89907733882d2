package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/proxyscope/internal/model"
)

type recommendations struct {
	db *gorm.DB
}

func newRecommendations(db *gorm.DB) *recommendations {
	return &recommendations{db}
}

// upsertRecommendation writes a recommendation keyed on (filing_id, question_id),
// overwriting the verdict columns on conflict. Shared by the store method and
// by QuestionClaim.Complete, which must write through the claim transaction.
func upsertRecommendation(db *gorm.DB, rec *model.Recommendation) error {
	err := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "filing_id"}, {Name: "question_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"voting_recommendation": gorm.Expr("EXCLUDED.voting_recommendation"),
			"rationale":             gorm.Expr("EXCLUDED.rationale"),
			"citation":              gorm.Expr("EXCLUDED.citation"),
			"confidence":            gorm.Expr("EXCLUDED.confidence"),
			"updated_at":            gorm.Expr("NOW()"),
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("upsert recommendation for question %d: %w", rec.QuestionID, err)
	}
	return nil
}

// Upsert stores a recommendation, replacing any previous verdict for the
// same question.
func (r *recommendations) Upsert(ctx context.Context, rec *model.Recommendation) error {
	return upsertRecommendation(r.db.WithContext(ctx), rec)
}

// ListByFiling returns all recommendations of a filing in question order.
func (r *recommendations) ListByFiling(ctx context.Context, filingID uint64) ([]*model.Recommendation, error) {
	var items []*model.Recommendation
	err := r.db.WithContext(ctx).
		Where("filing_id = ?", filingID).
		Order("question_id").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
