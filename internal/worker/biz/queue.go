// Package biz implements the worker claim loops that drain the scrape job
// and question queues.
package biz

import (
	"context"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
)

// JobClaim 是抓取任务的认领会话。
type JobClaim interface {
	Items() []*model.ScrapeJob
	Complete(ctx context.Context, job *model.ScrapeJob, result *model.ScrapeResult) error
	Fail(ctx context.Context, job *model.ScrapeJob, cause error) error
	Close() error
	Abort() error
}

// JobQueue 按批认领抓取任务。
type JobQueue interface {
	Claim(ctx context.Context, limit int) (JobClaim, error)
}

// QuestionClaim 是议题的认领会话。
type QuestionClaim interface {
	Items() []*model.Question
	Complete(ctx context.Context, question *model.Question, rec *model.Recommendation) error
	Fail(ctx context.Context, question *model.Question, cause error) error
	Close() error
	Abort() error
}

// QuestionQueue 按批认领议题。
type QuestionQueue interface {
	Claim(ctx context.Context, limit int) (QuestionClaim, error)
}

// JobRunner 执行单个已认领的抓取任务。
type JobRunner interface {
	Run(ctx context.Context, job *model.ScrapeJob) (*model.ScrapeResult, error)
}

// QuestionRunner 为单个已认领的议题生成投票建议。
type QuestionRunner interface {
	Recommend(ctx context.Context, question *model.Question) (*model.Recommendation, error)
}

// StoreQueues adapts the datastore work queues to the worker interfaces.
func StoreQueues(factory store.Factory) (JobQueue, QuestionQueue) {
	return storeJobQueue{jobs: factory.ScrapeJobs()}, storeQuestionQueue{questions: factory.Questions()}
}

type storeJobQueue struct {
	jobs store.ScrapeJobStore
}

func (q storeJobQueue) Claim(ctx context.Context, limit int) (JobClaim, error) {
	claim, err := q.jobs.Claim(ctx, limit)
	if err != nil {
		return nil, err
	}
	return claim, nil
}

type storeQuestionQueue struct {
	questions store.QuestionStore
}

func (q storeQuestionQueue) Claim(ctx context.Context, limit int) (QuestionClaim, error) {
	claim, err := q.questions.Claim(ctx, limit)
	if err != nil {
		return nil, err
	}
	return claim, nil
}
