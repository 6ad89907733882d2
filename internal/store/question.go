package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/proxyscope/internal/model"
)

type questions struct {
	db *gorm.DB
}

func newQuestions(db *gorm.DB) *questions {
	return &questions{db}
}

// UpsertBatch inserts the questions or updates existing rows keyed on
// (filing_id, question_key). Content columns are overwritten; the embedding
// is kept when the incoming row carries none, so re-extraction never erases
// a vector that is already stored. Status is left untouched on conflict:
// a DONE question stays DONE.
func (q *questions) UpsertBatch(ctx context.Context, items []*model.Question) error {
	if len(items) == 0 {
		return nil
	}
	err := q.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "filing_id"}, {Name: "question_key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"question_text":           gorm.Expr("EXCLUDED.question_text"),
			"board_recommendation":    gorm.Expr("EXCLUDED.board_recommendation"),
			"question_type":           gorm.Expr("EXCLUDED.question_type"),
			"is_shareholder_proposal": gorm.Expr("EXCLUDED.is_shareholder_proposal"),
			"embedding":               gorm.Expr("COALESCE(EXCLUDED.embedding, questions.embedding)"),
			"updated_at":              gorm.Expr("NOW()"),
		}),
	}).Create(&items).Error
	if err != nil {
		return fmt.Errorf("upsert %d questions: %w", len(items), err)
	}
	return nil
}

// Get retrieves a question by row ID.
func (q *questions) Get(ctx context.Context, id uint64) (*model.Question, error) {
	var question model.Question
	if err := q.db.WithContext(ctx).First(&question, id).Error; err != nil {
		return nil, err
	}
	return &question, nil
}

// ListByFiling lists the questions of a filing in question-key order,
// optionally filtered by status.
func (q *questions) ListByFiling(ctx context.Context, filingID uint64, status model.Status) ([]*model.Question, error) {
	query := q.db.WithContext(ctx).Where("filing_id = ?", filingID)
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var items []*model.Question
	if err := query.Order("question_key").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Claim opens a work-queue session over up to limit claimable questions,
// optionally narrowed to the given row IDs. See QuestionClaim for the
// session contract.
func (q *questions) Claim(ctx context.Context, limit int, ids ...uint64) (*QuestionClaim, error) {
	tx := q.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin claim transaction: %w", tx.Error)
	}

	query := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status IN ?", model.ClaimableStatuses)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var items []*model.Question
	if err := query.Order("id").Limit(limit).Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("claim questions: %w", err)
	}

	return &QuestionClaim{tx: tx, items: items}, nil
}
