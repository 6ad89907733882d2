package store

import (
	"context"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/proxyscope/internal/model"
)

// chunkInsertBatch bounds the parameter count of one bulk insert.
const chunkInsertBatch = 200

type chunks struct {
	db *gorm.DB
}

func newChunks(db *gorm.DB) *chunks {
	return &chunks{db}
}

// Replace swaps the full chunk set of a filing in one transaction: any
// existing chunks are deleted, then the new set is inserted. Either every
// new chunk lands or the old set survives untouched.
func (c *chunks) Replace(ctx context.Context, filingID uint64, items []*model.Chunk) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("filing_id = ?", filingID).Delete(&model.Chunk{}).Error; err != nil {
			return fmt.Errorf("delete chunks of filing %d: %w", filingID, err)
		}
		if len(items) == 0 {
			return nil
		}
		for _, item := range items {
			item.FilingID = filingID
		}
		if err := tx.CreateInBatches(items, chunkInsertBatch).Error; err != nil {
			return fmt.Errorf("insert %d chunks of filing %d: %w", len(items), filingID, err)
		}
		return nil
	})
}

// NearestByFiling returns the k chunks of the filing nearest to the query
// embedding by inner product. Chunks without an embedding never match.
func (c *chunks) NearestByFiling(ctx context.Context, filingID uint64, embedding []float32, k int) ([]*model.Chunk, error) {
	var items []*model.Chunk
	err := c.db.WithContext(ctx).
		Where("filing_id = ? AND embedding IS NOT NULL", filingID).
		Clauses(clause.OrderBy{Expression: clause.Expr{
			SQL:                "embedding <#> ?",
			Vars:               []interface{}{pgvector.NewVector(embedding)},
			WithoutParentheses: true,
		}}).
		Limit(k).
		Find(&items).Error
	if err != nil {
		return nil, fmt.Errorf("nearest chunks of filing %d: %w", filingID, err)
	}
	return items, nil
}

// CountByFiling returns the number of stored chunks for a filing.
func (c *chunks) CountByFiling(ctx context.Context, filingID uint64) (int64, error) {
	var count int64
	err := c.db.WithContext(ctx).Model(&model.Chunk{}).Where("filing_id = ?", filingID).Count(&count).Error
	return count, err
}
