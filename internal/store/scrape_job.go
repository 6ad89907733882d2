package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kart-io/proxyscope/internal/model"
)

type scrapeJobs struct {
	db *gorm.DB
}

func newScrapeJobs(db *gorm.DB) *scrapeJobs {
	return &scrapeJobs{db}
}

// Create persists a freshly accepted scrape job.
func (s *scrapeJobs) Create(ctx context.Context, job *model.ScrapeJob) error {
	if err := s.db.WithContext(ctx).Create(job).Error; err != nil {
		return fmt.Errorf("create scrape job %s: %w", job.ID, err)
	}
	return nil
}

// Get retrieves a scrape job by its ULID.
func (s *scrapeJobs) Get(ctx context.Context, id string) (*model.ScrapeJob, error) {
	var job model.ScrapeJob
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&job).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// List returns a page of scrape jobs, newest first.
func (s *scrapeJobs) List(ctx context.Context, offset, limit int) (*model.ScrapeJobList, error) {
	ret := &model.ScrapeJobList{}
	err := s.db.WithContext(ctx).
		Model(&model.ScrapeJob{}).
		Count(&ret.TotalCount).Error
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&ret.Items).Error
	if err != nil {
		return nil, err
	}
	return ret, nil
}

// Claim opens a work-queue session over up to limit claimable jobs,
// optionally narrowed to the given job IDs. ULIDs sort chronologically,
// so ordering by id drains oldest jobs first.
func (s *scrapeJobs) Claim(ctx context.Context, limit int, ids ...string) (*JobClaim, error) {
	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, fmt.Errorf("begin claim transaction: %w", tx.Error)
	}

	query := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where("status IN ?", model.ClaimableStatuses)
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var items []*model.ScrapeJob
	if err := query.Order("id").Limit(limit).Find(&items).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("claim scrape jobs: %w", err)
	}

	return &JobClaim{tx: tx, items: items}, nil
}
