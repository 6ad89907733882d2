package handler_test

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/api/handler"
	"github.com/kart-io/proxyscope/internal/api/router"
	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/validator"
)

// fakeFilingStore keeps filings in a map keyed by row ID and records the
// arguments of the last List call.
type fakeFilingStore struct {
	byID map[uint64]*model.Filing

	lastCIK    string
	lastOffset int
	lastLimit  int
	listErr    error
}

func (s *fakeFilingStore) Upsert(_ context.Context, filing *model.Filing) error {
	s.byID[filing.ID] = filing
	return nil
}

func (s *fakeFilingStore) Get(_ context.Context, id uint64) (*model.Filing, error) {
	if f, ok := s.byID[id]; ok {
		return f, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeFilingStore) GetByProxyID(_ context.Context, proxyID string) (*model.Filing, error) {
	for _, f := range s.byID {
		if f.ProxyID == proxyID {
			return f, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeFilingStore) List(_ context.Context, cik string, offset, limit int) (*model.FilingList, error) {
	s.lastCIK, s.lastOffset, s.lastLimit = cik, offset, limit
	if s.listErr != nil {
		return nil, s.listErr
	}
	items := []*model.Filing{}
	for _, f := range s.byID {
		if cik == "" || f.CIK == cik {
			items = append(items, f)
		}
	}
	return &model.FilingList{TotalCount: int64(len(items)), Items: items}, nil
}

func (s *fakeFilingStore) Delete(_ context.Context, id uint64) error {
	delete(s.byID, id)
	return nil
}

// fakeQuestionStore serves canned questions grouped by filing.
type fakeQuestionStore struct {
	byFiling map[uint64][]*model.Question

	lastStatus model.Status
}

func (s *fakeQuestionStore) UpsertBatch(_ context.Context, questions []*model.Question) error {
	return nil
}

func (s *fakeQuestionStore) Get(_ context.Context, id uint64) (*model.Question, error) {
	for _, qs := range s.byFiling {
		for _, q := range qs {
			if q.ID == id {
				return q, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeQuestionStore) ListByFiling(_ context.Context, filingID uint64, status model.Status) ([]*model.Question, error) {
	s.lastStatus = status
	var items []*model.Question
	for _, q := range s.byFiling[filingID] {
		if status == "" || q.Status == status {
			items = append(items, q)
		}
	}
	return items, nil
}

func (s *fakeQuestionStore) Claim(_ context.Context, _ int, _ ...uint64) (*store.QuestionClaim, error) {
	return nil, errors.New("not supported in fake")
}

// fakeRecommendationStore serves canned recommendations grouped by filing.
type fakeRecommendationStore struct {
	byFiling map[uint64][]*model.Recommendation
}

func (s *fakeRecommendationStore) Upsert(_ context.Context, rec *model.Recommendation) error {
	s.byFiling[rec.FilingID] = append(s.byFiling[rec.FilingID], rec)
	return nil
}

func (s *fakeRecommendationStore) ListByFiling(_ context.Context, filingID uint64) ([]*model.Recommendation, error) {
	return s.byFiling[filingID], nil
}

// fakeScrapeJobStore keeps jobs in a map keyed by ULID.
type fakeScrapeJobStore struct {
	byID map[string]*model.ScrapeJob

	createErr error
}

func (s *fakeScrapeJobStore) Create(_ context.Context, job *model.ScrapeJob) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.byID[job.ID] = job
	return nil
}

func (s *fakeScrapeJobStore) Get(_ context.Context, id string) (*model.ScrapeJob, error) {
	if j, ok := s.byID[id]; ok {
		return j, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *fakeScrapeJobStore) List(_ context.Context, offset, limit int) (*model.ScrapeJobList, error) {
	items := []*model.ScrapeJob{}
	for _, j := range s.byID {
		items = append(items, j)
	}
	return &model.ScrapeJobList{TotalCount: int64(len(items)), Items: items}, nil
}

func (s *fakeScrapeJobStore) Claim(_ context.Context, _ int, _ ...string) (*store.JobClaim, error) {
	return nil, errors.New("not supported in fake")
}

// fakeFactory wires the fake stores into a store.Factory.
type fakeFactory struct {
	filings         *fakeFilingStore
	questions       *fakeQuestionStore
	recommendations *fakeRecommendationStore
	jobs            *fakeScrapeJobStore
}

func newFakeFactory() *fakeFactory {
	return &fakeFactory{
		filings:         &fakeFilingStore{byID: map[uint64]*model.Filing{}},
		questions:       &fakeQuestionStore{byFiling: map[uint64][]*model.Question{}},
		recommendations: &fakeRecommendationStore{byFiling: map[uint64][]*model.Recommendation{}},
		jobs:            &fakeScrapeJobStore{byID: map[string]*model.ScrapeJob{}},
	}
}

func (f *fakeFactory) Filings() store.FilingStore                 { return f.filings }
func (f *fakeFactory) Chunks() store.ChunkStore                   { return nil }
func (f *fakeFactory) Questions() store.QuestionStore             { return f.questions }
func (f *fakeFactory) Recommendations() store.RecommendationStore { return f.recommendations }
func (f *fakeFactory) ScrapeJobs() store.ScrapeJobStore           { return f.jobs }

func (f *fakeFactory) Transaction(_ context.Context, fn func(store.Factory) error) error {
	return fn(f)
}

func (f *fakeFactory) AutoMigrate() error { return nil }
func (f *fakeFactory) Close() error       { return nil }

// fakePinger simulates the database health probe.
type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(_ context.Context) error { return p.err }

var rulesOnce sync.Once

// newTestRouter builds a gin engine with the full route table and the
// custom binding rules registered, backed by the fake stores.
func newTestRouter(f *fakeFactory, db handler.Pinger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	rulesOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
			validator.RegisterRules(v)
		}
	})

	engine := gin.New()
	router.Register(engine,
		handler.NewJobHandler(f),
		handler.NewFilingHandler(f),
		handler.NewQuestionHandler(f),
		handler.NewRecommendationHandler(f),
		handler.NewHealthHandler(db),
	)
	return engine
}
