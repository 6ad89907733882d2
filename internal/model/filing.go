package model

import (
	"fmt"
	"time"
)

// Filing represents one stored proxy statement (SEC form DEF 14A or a
// revision of it). The natural key is ProxyID, "{cik}_{accession_number}",
// which stays stable across re-ingestion.
type Filing struct {
	ID              uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	ProxyID         string    `json:"proxy_id" gorm:"size:64;not null;uniqueIndex:uk_filings_proxy_id"`
	CIK             string    `json:"cik" gorm:"size:10;not null;index:idx_filings_cik"`
	AccessionNumber string    `json:"accession_number" gorm:"size:25;not null"`
	PrimaryDocument string    `json:"primary_document" gorm:"size:255"`
	CompanyName     string    `json:"company_name" gorm:"size:255"`
	Ticker          string    `json:"ticker" gorm:"size:16"`
	Exchange        string    `json:"exchange" gorm:"size:32"`
	FormType        string    `json:"form_type" gorm:"size:16;not null"`
	FilingDate      time.Time `json:"filing_date" gorm:"type:date"`
	WordCount       int       `json:"word_count" gorm:"default:0"`
	SourceURL       string    `json:"source_url" gorm:"size:512"`
	CreatedAt       time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time `json:"updated_at" gorm:"autoUpdateTime"`

	Chunks    []Chunk    `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Questions []Question `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// FilingList contains a page of filings and the total row count.
type FilingList struct {
	TotalCount int64     `json:"totalCount"`
	Items      []*Filing `json:"items"`
}

// TableName returns the table name for GORM.
func (f *Filing) TableName() string {
	return "filings"
}

// BuildProxyID derives the natural key for a filing from its CIK and
// accession number.
func BuildProxyID(cik, accessionNumber string) string {
	return fmt.Sprintf("%s_%s", cik, accessionNumber)
}
