package model

import (
	"time"

	"gorm.io/datatypes"
)

// ScrapeJob is a queued request to ingest one company-year of proxy filings
// from EDGAR. The ID is a ULID assigned by the API when the job is accepted.
type ScrapeJob struct {
	ID              string         `json:"id" gorm:"primaryKey;type:char(26)"`
	CIK             string         `json:"cik" gorm:"size:10;not null;index:idx_scrape_jobs_cik"`
	Year            int            `json:"year" gorm:"not null"`
	ReplaceExisting bool           `json:"replace_existing" gorm:"default:false"`
	Status          Status         `json:"status" gorm:"type:varchar(16);not null;default:'NEW';index:idx_scrape_jobs_status"`
	Result          datatypes.JSON `json:"result,omitempty" gorm:"type:jsonb"`
	ErrorMsg        *string        `json:"error_msg,omitempty" gorm:"type:text"`
	LastAttempt     *time.Time     `json:"last_attempt,omitempty"`
	CreatedAt       time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// ScrapeJobList contains a page of scrape jobs and the total row count.
type ScrapeJobList struct {
	TotalCount int64        `json:"totalCount"`
	Items      []*ScrapeJob `json:"items"`
}

// TableName returns the table name for GORM.
func (j *ScrapeJob) TableName() string {
	return "scrape_jobs"
}

// ScrapeResult summarizes what a completed scrape job ingested. It is
// marshaled into ScrapeJob.Result when the job transitions to DONE.
type ScrapeResult struct {
	FilingsFound     int      `json:"filings_found"`
	FilingsIngested  int      `json:"filings_ingested"`
	FilingsSkipped   int      `json:"filings_skipped"`
	QuestionsCreated int      `json:"questions_created"`
	ProxyIDs         []string `json:"proxy_ids,omitempty"`
}
