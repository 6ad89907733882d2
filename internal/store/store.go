// Package store provides persistent storage for filings, chunks, questions,
// recommendations and scrape jobs, plus the row-locked work queue the
// workers claim from.
package store

import (
	"context"

	"github.com/kart-io/proxyscope/internal/model"
)

// Factory defines the factory interface for creating stores.
//
// Transaction runs fn with a Factory whose stores share one database
// transaction; returning an error rolls everything back.
type Factory interface {
	Filings() FilingStore
	Chunks() ChunkStore
	Questions() QuestionStore
	Recommendations() RecommendationStore
	ScrapeJobs() ScrapeJobStore
	Transaction(ctx context.Context, fn func(Factory) error) error
	AutoMigrate() error
	Close() error
}

// FilingStore defines filing storage.
//
// Upsert is keyed on the filing's proxy ID: re-ingesting the same filing
// updates the row in place and reports the stable row ID back through
// filing.ID. Delete removes the filing together with its chunks, questions
// and recommendations.
type FilingStore interface {
	Upsert(ctx context.Context, filing *model.Filing) error
	Get(ctx context.Context, id uint64) (*model.Filing, error)
	GetByProxyID(ctx context.Context, proxyID string) (*model.Filing, error)
	List(ctx context.Context, cik string, offset, limit int) (*model.FilingList, error)
	Delete(ctx context.Context, id uint64) error
}

// ChunkStore defines chunk storage and nearest-neighbour search.
//
// Replace swaps the full chunk set of a filing atomically. NearestByFiling
// returns the k chunks of one filing closest to the query embedding by
// inner product, skipping rows with no embedding.
type ChunkStore interface {
	Replace(ctx context.Context, filingID uint64, chunks []*model.Chunk) error
	NearestByFiling(ctx context.Context, filingID uint64, embedding []float32, k int) ([]*model.Chunk, error)
	CountByFiling(ctx context.Context, filingID uint64) (int64, error)
}

// QuestionStore defines question storage.
//
// UpsertBatch is keyed on (filing_id, question_key) and keeps an existing
// embedding when the incoming row carries none. Claim opens a work-queue
// session over claimable questions; passing ids narrows the claim to those
// rows.
type QuestionStore interface {
	UpsertBatch(ctx context.Context, questions []*model.Question) error
	Get(ctx context.Context, id uint64) (*model.Question, error)
	ListByFiling(ctx context.Context, filingID uint64, status model.Status) ([]*model.Question, error)
	Claim(ctx context.Context, limit int, ids ...uint64) (*QuestionClaim, error)
}

// RecommendationStore defines voting recommendation storage, keyed on
// (filing_id, question_id).
type RecommendationStore interface {
	Upsert(ctx context.Context, rec *model.Recommendation) error
	ListByFiling(ctx context.Context, filingID uint64) ([]*model.Recommendation, error)
}

// ScrapeJobStore defines scrape job storage. Claim opens a work-queue
// session over claimable jobs; passing ids narrows the claim to those rows.
type ScrapeJobStore interface {
	Create(ctx context.Context, job *model.ScrapeJob) error
	Get(ctx context.Context, id string) (*model.ScrapeJob, error)
	List(ctx context.Context, offset, limit int) (*model.ScrapeJobList, error)
	Claim(ctx context.Context, limit int, ids ...string) (*JobClaim, error)
}
