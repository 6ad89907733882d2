package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/pkg/utils/json"
)

// errorMsgLimit caps stored failure messages so a pathological upstream
// error cannot bloat the table.
const errorMsgLimit = 2000

// QuestionClaim is a work-queue session over questions selected with
// FOR UPDATE SKIP LOCKED. The selecting transaction stays open for the life
// of the claim: concurrent workers skip the locked rows, and a worker crash
// rolls the transaction back so the rows become claimable again untouched.
//
// Complete and Fail record per-item outcomes through the claim transaction.
// Close commits the session, Abort rolls it back; both are idempotent and
// exactly one of them must be called, even when Items is empty.
type QuestionClaim struct {
	tx    *gorm.DB
	items []*model.Question
	done  bool
}

// Items returns the claimed questions, oldest first.
func (c *QuestionClaim) Items() []*model.Question {
	return c.items
}

// Complete stores the recommendation for a claimed question and marks the
// question DONE. Both writes ride the claim transaction, so the verdict and
// the status flip commit together at Close.
func (c *QuestionClaim) Complete(ctx context.Context, question *model.Question, rec *model.Recommendation) error {
	if c.done {
		return fmt.Errorf("complete question %d: claim already closed", question.ID)
	}
	if err := upsertRecommendation(c.tx.WithContext(ctx), rec); err != nil {
		return err
	}
	err := c.tx.WithContext(ctx).
		Model(&model.Question{}).
		Where("id = ?", question.ID).
		Updates(map[string]interface{}{
			"status":       model.StatusDone,
			"last_attempt": gorm.Expr("NOW()"),
			"error_msg":    nil,
		}).Error
	if err != nil {
		return fmt.Errorf("mark question %d done: %w", question.ID, err)
	}
	return nil
}

// Fail marks a claimed question ERROR with the failure message. The row
// stays claimable, so a later claim retries it.
func (c *QuestionClaim) Fail(ctx context.Context, question *model.Question, cause error) error {
	if c.done {
		return fmt.Errorf("fail question %d: claim already closed", question.ID)
	}
	err := c.tx.WithContext(ctx).
		Model(&model.Question{}).
		Where("id = ?", question.ID).
		Updates(map[string]interface{}{
			"status":       model.StatusError,
			"last_attempt": gorm.Expr("NOW()"),
			"error_msg":    truncateError(cause),
		}).Error
	if err != nil {
		return fmt.Errorf("mark question %d failed: %w", question.ID, err)
	}
	return nil
}

// Close commits the claim session, publishing all recorded outcomes and
// releasing the row locks.
func (c *QuestionClaim) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	if err := c.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit question claim: %w", err)
	}
	return nil
}

// Abort rolls the claim session back. All claimed rows revert to their
// pre-claim state.
func (c *QuestionClaim) Abort() error {
	if c.done {
		return nil
	}
	c.done = true
	if err := c.tx.Rollback().Error; err != nil {
		return fmt.Errorf("roll back question claim: %w", err)
	}
	return nil
}

// JobClaim is a work-queue session over scrape jobs. It follows the same
// contract as QuestionClaim.
type JobClaim struct {
	tx    *gorm.DB
	items []*model.ScrapeJob
	done  bool
}

// Items returns the claimed jobs, oldest first.
func (c *JobClaim) Items() []*model.ScrapeJob {
	return c.items
}

// Complete marks a claimed job DONE and stores its result summary.
func (c *JobClaim) Complete(ctx context.Context, job *model.ScrapeJob, result *model.ScrapeResult) error {
	if c.done {
		return fmt.Errorf("complete job %s: claim already closed", job.ID)
	}
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshal result for job %s: %w", job.ID, err)
	}
	err = c.tx.WithContext(ctx).
		Model(&model.ScrapeJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":       model.StatusDone,
			"result":       payload,
			"last_attempt": gorm.Expr("NOW()"),
			"error_msg":    nil,
		}).Error
	if err != nil {
		return fmt.Errorf("mark job %s done: %w", job.ID, err)
	}
	return nil
}

// Fail marks a claimed job ERROR with the failure message so a later claim
// retries it.
func (c *JobClaim) Fail(ctx context.Context, job *model.ScrapeJob, cause error) error {
	if c.done {
		return fmt.Errorf("fail job %s: claim already closed", job.ID)
	}
	err := c.tx.WithContext(ctx).
		Model(&model.ScrapeJob{}).
		Where("id = ?", job.ID).
		Updates(map[string]interface{}{
			"status":       model.StatusError,
			"last_attempt": gorm.Expr("NOW()"),
			"error_msg":    truncateError(cause),
		}).Error
	if err != nil {
		return fmt.Errorf("mark job %s failed: %w", job.ID, err)
	}
	return nil
}

// Close commits the claim session.
func (c *JobClaim) Close() error {
	if c.done {
		return nil
	}
	c.done = true
	if err := c.tx.Commit().Error; err != nil {
		return fmt.Errorf("commit job claim: %w", err)
	}
	return nil
}

// Abort rolls the claim session back.
func (c *JobClaim) Abort() error {
	if c.done {
		return nil
	}
	c.done = true
	if err := c.tx.Rollback().Error; err != nil {
		return fmt.Errorf("roll back job claim: %w", err)
	}
	return nil
}

func truncateError(cause error) string {
	msg := cause.Error()
	if len(msg) > errorMsgLimit {
		msg = msg[:errorMsgLimit]
	}
	return msg
}
