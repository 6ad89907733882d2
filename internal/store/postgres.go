package store

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/kart-io/logger"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/pkg/component/postgres"
)

var (
	clientFactory Factory
	once          sync.Once
)

// datastore implements the Factory interface.
type datastore struct {
	db *gorm.DB
}

// GetFactory returns the storage factory backed by the given postgres
// client. The factory is created once; later calls return the same instance.
func GetFactory(client *postgres.Client) (Factory, error) {
	var err error

	once.Do(func() {
		if client == nil {
			err = fmt.Errorf("postgres client cannot be nil")
			return
		}
		clientFactory = &datastore{db: client.DB()}
	})

	if clientFactory == nil || err != nil {
		return nil, fmt.Errorf("failed to get postgres factory: %w", err)
	}

	return clientFactory, nil
}

// NewFactory returns a Factory over an existing gorm.DB. Used by tests and
// by Transaction to rebind stores onto a transaction handle.
func NewFactory(db *gorm.DB) Factory {
	return &datastore{db: db}
}

// Filings returns the filing store.
func (ds *datastore) Filings() FilingStore {
	return newFilings(ds.db)
}

// Chunks returns the chunk store.
func (ds *datastore) Chunks() ChunkStore {
	return newChunks(ds.db)
}

// Questions returns the question store.
func (ds *datastore) Questions() QuestionStore {
	return newQuestions(ds.db)
}

// Recommendations returns the recommendation store.
func (ds *datastore) Recommendations() RecommendationStore {
	return newRecommendations(ds.db)
}

// ScrapeJobs returns the scrape job store.
func (ds *datastore) ScrapeJobs() ScrapeJobStore {
	return newScrapeJobs(ds.db)
}

// Transaction runs fn inside one database transaction.
func (ds *datastore) Transaction(ctx context.Context, fn func(Factory) error) error {
	return ds.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&datastore{db: tx})
	})
}

// AutoMigrate creates the pgvector extension, migrates the schema and
// builds the vector indexes.
func (ds *datastore) AutoMigrate() error {
	if err := ds.db.Exec("CREATE EXTENSION IF NOT EXISTS vector").Error; err != nil {
		return fmt.Errorf("create vector extension: %w", err)
	}

	if err := ds.db.AutoMigrate(
		&model.Filing{},
		&model.Chunk{},
		&model.Question{},
		&model.Recommendation{},
		&model.ScrapeJob{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	// Retrieval orders by inner product, so the HNSW indexes use ip ops.
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_chunks_embedding ON chunks USING hnsw (embedding vector_ip_ops)",
		"CREATE INDEX IF NOT EXISTS idx_questions_embedding ON questions USING hnsw (embedding vector_ip_ops)",
	}
	for _, stmt := range indexes {
		if err := ds.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("create vector index: %w", err)
		}
	}

	logger.Info("database schema migrated")
	return nil
}

// Close closes the factory. The underlying connection is owned by the
// postgres component and closed there.
func (ds *datastore) Close() error {
	return nil
}
