package handler_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/pkg/errno"
)

func seedQuestions(f *fakeFactory, filingID uint64) {
	f.questions.byFiling[filingID] = []*model.Question{
		{
			ID:                  101,
			FilingID:            filingID,
			QuestionKey:         "question_1",
			QuestionText:        "Election of ten directors named in the proxy statement",
			BoardRecommendation: model.RecommendationFor,
			QuestionType:        model.QuestionTypeBoardComposition,
			Status:              model.StatusDone,
		},
		{
			ID:                    102,
			FilingID:              filingID,
			QuestionKey:           "question_2",
			QuestionText:          "Shareholder proposal regarding a report on climate lobbying",
			BoardRecommendation:   model.RecommendationAgainst,
			QuestionType:          model.QuestionTypeEnvironmentSocial,
			IsShareholderProposal: true,
			Status:                model.StatusNew,
		},
	}
}

func TestListQuestionsByFiling(t *testing.T) {
	f := newFakeFactory()
	seedFiling(f, 7, "0000320193")
	seedQuestions(f, 7)
	engine := newTestRouter(f, &fakePinger{})

	w, resp := doJSON(t, engine, http.MethodGet, "/v1/filings/7/questions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var page struct {
		TotalCount int64             `json:"totalCount"`
		Items      []*model.Question `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	assert.Equal(t, int64(2), page.TotalCount)
	require.Len(t, page.Items, 2)
	assert.True(t, page.Items[1].IsShareholderProposal)
}

func TestListQuestionsFiltersByStatus(t *testing.T) {
	f := newFakeFactory()
	seedFiling(f, 7, "0000320193")
	seedQuestions(f, 7)
	engine := newTestRouter(f, &fakePinger{})

	w, resp := doJSON(t, engine, http.MethodGet, "/v1/filings/7/questions?status=NEW", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.StatusNew, f.questions.lastStatus)

	var page struct {
		TotalCount int64             `json:"totalCount"`
		Items      []*model.Question `json:"items"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &page))
	require.Len(t, page.Items, 1)
	assert.Equal(t, "question_2", page.Items[0].QuestionKey)
}

func TestListQuestionsRejectsUnknownStatus(t *testing.T) {
	f := newFakeFactory()
	seedFiling(f, 7, "0000320193")
	engine := newTestRouter(f, &fakePinger{})

	w, resp := doJSON(t, engine, http.MethodGet, "/v1/filings/7/questions?status=PENDING", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, errno.ErrValidationFailed.Code, resp.Code)
}

func TestListQuestionsFilingNotFound(t *testing.T) {
	engine := newTestRouter(newFakeFactory(), &fakePinger{})

	w, resp := doJSON(t, engine, http.MethodGet, "/v1/filings/99/questions", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, errno.ErrFilingNotFound.Code, resp.Code)
}

func TestListQuestionsEmptyIsNotNull(t *testing.T) {
	f := newFakeFactory()
	seedFiling(f, 7, "0000320193")
	engine := newTestRouter(f, &fakePinger{})

	w, resp := doJSON(t, engine, http.MethodGet, "/v1/filings/7/questions", nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 没有议题时 items 应是空数组而不是 null
	assert.Contains(t, string(resp.Data), `"items":[]`)
}
