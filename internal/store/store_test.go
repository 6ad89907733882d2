package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/model"
)

func setupTestFactory(t *testing.T) (Factory, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewFactory(gormDB), mock, db
}

func TestFilingUpsert(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO "filings" .+ON CONFLICT \("proxy_id"\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	filing := &model.Filing{
		ProxyID:         "0000320193_0000320193-24-000005",
		CIK:             "0000320193",
		AccessionNumber: "0000320193-24-000005",
		FormType:        "DEF 14A",
		FilingDate:      time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC),
	}
	err := factory.Filings().Upsert(context.Background(), filing)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), filing.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFilingUpsertNoRowIsError(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO "filings"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	filing := &model.Filing{
		ProxyID:         "0000320193_0000320193-24-000005",
		CIK:             "0000320193",
		AccessionNumber: "0000320193-24-000005",
		FormType:        "DEF 14A",
	}
	err := factory.Filings().Upsert(context.Background(), filing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "returned no row")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionUpsertKeepsExistingEmbedding(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	// Re-extraction must overwrite text but never erase a stored vector,
	// and must leave status alone so DONE questions stay DONE.
	mock.ExpectQuery(regexp.QuoteMeta(`COALESCE(EXCLUDED.embedding, questions.embedding)`)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))

	items := []*model.Question{
		{FilingID: 7, QuestionKey: "Q1", QuestionText: "Elect directors", Status: model.StatusNew},
		{FilingID: 7, QuestionKey: "Q2", QuestionText: "Ratify auditor", Status: model.StatusNew},
	}
	err := factory.Questions().UpsertBatch(context.Background(), items)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionUpsertEmptyBatchIsNoop(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	err := factory.Questions().UpsertBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionClaimLifecycle(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status IN ($1,$2) ORDER BY id LIMIT $3 FOR UPDATE SKIP LOCKED`)).
		WithArgs("NEW", "ERROR", 2).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filing_id", "question_key", "question_text", "status"}).
			AddRow(11, 7, "Q1", "Elect directors", "NEW").
			AddRow(12, 7, "Q2", "Ratify auditor", "ERROR"))

	claim, err := factory.Questions().Claim(context.Background(), 2)
	require.NoError(t, err)
	require.Len(t, claim.Items(), 2)

	// Completing writes the recommendation and the DONE flip through the
	// claim transaction.
	mock.ExpectQuery(`INSERT INTO "recommendations" .+ON CONFLICT \("filing_id","question_id"\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`UPDATE "questions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	first := claim.Items()[0]
	rec := &model.Recommendation{
		FilingID:             first.FilingID,
		QuestionID:           first.ID,
		VotingRecommendation: model.RecommendationFor,
		Rationale:            "Routine election, no concerns raised.",
	}
	require.NoError(t, claim.Complete(context.Background(), first, rec))

	mock.ExpectExec(`UPDATE "questions" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, claim.Fail(context.Background(), claim.Items()[1], errors.New("model returned null")))

	mock.ExpectCommit()
	require.NoError(t, claim.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestQuestionClaimAbortRollsBack(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filing_id", "question_key", "question_text", "status"}).
			AddRow(11, 7, "Q1", "Elect directors", "NEW"))
	mock.ExpectRollback()

	claim, err := factory.Questions().Claim(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, claim.Abort())

	// Close after Abort is a no-op, and further outcomes are rejected.
	require.NoError(t, claim.Close())
	err = claim.Complete(context.Background(), claim.Items()[0], &model.Recommendation{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already closed")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEmptyClaimStillHoldsTransaction(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()

	claim, err := factory.Questions().Claim(context.Background(), 10)
	require.NoError(t, err)
	assert.Empty(t, claim.Items())
	require.NoError(t, claim.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobClaimCompleteStoresResult(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status IN ($1,$2) ORDER BY id LIMIT $3 FOR UPDATE SKIP LOCKED`)).
		WithArgs("NEW", "ERROR", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cik", "year", "status"}).
			AddRow("01J9ZK3V4N5P6Q7R8S9T0VWXYZ", "0000320193", 2024, "NEW"))

	claim, err := factory.ScrapeJobs().Claim(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, claim.Items(), 1)

	mock.ExpectExec(`UPDATE "scrape_jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	result := &model.ScrapeResult{FilingsFound: 2, FilingsIngested: 1, FilingsSkipped: 1}
	require.NoError(t, claim.Complete(context.Background(), claim.Items()[0], result))
	require.NoError(t, claim.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestJobClaimFailKeepsJobClaimable(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery(`FOR UPDATE SKIP LOCKED`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cik", "year", "status"}).
			AddRow("01J9ZK3V4N5P6Q7R8S9T0VWXYZ", "0000320193", 2024, "ERROR"))
	mock.ExpectExec(`UPDATE "scrape_jobs" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	claim, err := factory.ScrapeJobs().Claim(context.Background(), 1)
	require.NoError(t, err)
	require.NoError(t, claim.Fail(context.Background(), claim.Items()[0], errors.New("EDGAR unavailable")))
	require.NoError(t, claim.Close())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestChunkReplaceSwapsWholeSet(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM "chunks" WHERE filing_id = $1`)).
		WithArgs(7).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectQuery(`INSERT INTO "chunks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1).AddRow(2))
	mock.ExpectCommit()

	items := []*model.Chunk{
		{ChunkIndex: 0, Content: "first window"},
		{ChunkIndex: 1, Content: "second window"},
	}
	err := factory.Chunks().Replace(context.Background(), 7, items)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNearestByFilingQueriesInnerProduct(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE filing_id = $1 AND embedding IS NOT NULL ORDER BY embedding <#> $2 LIMIT $3`)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "filing_id", "chunk_index", "content"}).
			AddRow(2, 7, 1, "closest window").
			AddRow(1, 7, 0, "next window"))

	got, err := factory.Chunks().NearestByFiling(context.Background(), 7, []float32{0.1, 0.2}, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "closest window", got[0].Content)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecommendationUpsertOverwrites(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectQuery(`INSERT INTO "recommendations" .+ON CONFLICT \("filing_id","question_id"\) DO UPDATE SET`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	rec := &model.Recommendation{
		FilingID:             7,
		QuestionID:           11,
		VotingRecommendation: model.RecommendationAgainst,
		Rationale:            "Plan dilutes shareholders beyond policy limits.",
		Confidence:           0.9,
	}
	err := factory.Recommendations().Upsert(context.Background(), rec)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScrapeJobList(t *testing.T) {
	factory, mock, db := setupTestFactory(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "scrape_jobs"`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT \* FROM "scrape_jobs" ORDER BY created_at DESC, id DESC`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "cik", "year", "status"}).
			AddRow("01J9ZK3V4N5P6Q7R8S9T0VWXYZ", "0000320193", 2024, "DONE").
			AddRow("01J9ZK3V4N5P6Q7R8S9T0VWXYA", "0000789019", 2023, "NEW"))

	got, err := factory.ScrapeJobs().List(context.Background(), 0, 20)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.TotalCount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "0000320193", got.Items[0].CIK)
	assert.NoError(t, mock.ExpectationsWereMet())
}
