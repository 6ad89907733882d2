package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Chunk is one token window of a filing's text together with its embedding.
//
// Chunks of a filing are only ever replaced as a whole set, so ChunkIndex is
// dense and starts at 0 for every filing.
type Chunk struct {
	ID         uint64          `json:"id" gorm:"primaryKey;autoIncrement"`
	FilingID   uint64          `json:"filing_id" gorm:"not null;uniqueIndex:uk_chunks_filing_index,priority:1"`
	ChunkIndex int             `json:"chunk_index" gorm:"not null;uniqueIndex:uk_chunks_filing_index,priority:2"`
	Content    string          `json:"content" gorm:"type:text;not null"`
	Embedding  pgvector.Vector `json:"-" gorm:"type:vector(1536)"`
	CreatedAt  time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

// TableName returns the table name for GORM.
func (Chunk) TableName() string {
	return "chunks"
}
