package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/proxyscope/internal/model"
)

type filings struct {
	db *gorm.DB
}

func newFilings(db *gorm.DB) *filings {
	return &filings{db}
}

// Upsert inserts the filing or, when a row with the same proxy ID exists,
// updates all non-key columns in place. The stable row ID is written back
// into filing.ID. An upsert that affects no row is a data integrity error.
func (f *filings) Upsert(ctx context.Context, filing *model.Filing) error {
	result := f.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "proxy_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"cik", "accession_number", "primary_document", "company_name",
			"ticker", "exchange", "form_type", "filing_date", "word_count",
			"source_url", "updated_at",
		}),
	}).Create(filing)
	if result.Error != nil {
		return fmt.Errorf("upsert filing %s: %w", filing.ProxyID, result.Error)
	}
	if result.RowsAffected == 0 || filing.ID == 0 {
		return fmt.Errorf("upsert filing %s returned no row", filing.ProxyID)
	}
	return nil
}

// Get retrieves a filing by row ID.
func (f *filings) Get(ctx context.Context, id uint64) (*model.Filing, error) {
	var filing model.Filing
	if err := f.db.WithContext(ctx).First(&filing, id).Error; err != nil {
		return nil, err
	}
	return &filing, nil
}

// GetByProxyID retrieves a filing by its natural key.
func (f *filings) GetByProxyID(ctx context.Context, proxyID string) (*model.Filing, error) {
	var filing model.Filing
	if err := f.db.WithContext(ctx).Where("proxy_id = ?", proxyID).First(&filing).Error; err != nil {
		return nil, err
	}
	return &filing, nil
}

// Delete removes a filing and everything derived from it: chunks,
// questions and recommendations go in the same transaction, so a
// replacement ingest starts from a clean slate.
func (f *filings) Delete(ctx context.Context, id uint64) error {
	err := f.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("filing_id = ?", id).Delete(&model.Recommendation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("filing_id = ?", id).Delete(&model.Question{}).Error; err != nil {
			return err
		}
		if err := tx.Where("filing_id = ?", id).Delete(&model.Chunk{}).Error; err != nil {
			return err
		}
		return tx.Delete(&model.Filing{}, id).Error
	})
	if err != nil {
		return fmt.Errorf("delete filing %d: %w", id, err)
	}
	return nil
}

// List lists filings newest first, optionally restricted to one CIK.
func (f *filings) List(ctx context.Context, cik string, offset, limit int) (*model.FilingList, error) {
	query := f.db.WithContext(ctx).Model(&model.Filing{})
	if cik != "" {
		query = query.Where("cik = ?", cik)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return nil, err
	}

	var items []*model.Filing
	if err := query.Order("filing_date DESC, id DESC").Offset(offset).Limit(limit).Find(&items).Error; err != nil {
		return nil, err
	}

	return &model.FilingList{TotalCount: count, Items: items}, nil
}
