package biz

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/kart-io/logger"
	"github.com/panjf2000/ants/v2"
)

const (
	queueJobs      = "scrape_jobs"
	queueQuestions = "questions"
)

// Config 定义工作循环配置。
type Config struct {
	// Concurrency 每个队列的独立认领循环数量。
	Concurrency int
	// JobBatch 单次认领的抓取任务数量。
	JobBatch int
	// QuestionBatch 单次认领的议题数量。
	QuestionBatch int
	// PollInterval 队列为空时的轮询间隔。
	PollInterval time.Duration
}

// Worker 并发消费抓取任务与议题两个工作队列。
//
// 每个认领循环独立运行：认领一批 → 逐项处理 → 提交认领会话 →
// 队列为空时休眠。循环之间不共享任何状态，协调完全依赖数据库
// 行锁（FOR UPDATE SKIP LOCKED），因此多个 Worker 进程可以安全
// 地指向同一个数据库。
type Worker struct {
	jobs        JobQueue
	questions   QuestionQueue
	ingestor    JobRunner
	recommender QuestionRunner
	config      *Config
	pool        *ants.Pool
}

// NewWorker 创建 Worker 并初始化 goroutine 池。
func NewWorker(jobs JobQueue, questions QuestionQueue, ingestor JobRunner, recommender QuestionRunner, config *Config) (*Worker, error) {
	if config == nil {
		config = &Config{}
	}
	if config.Concurrency <= 0 {
		config.Concurrency = 1
	}
	if config.JobBatch <= 0 {
		config.JobBatch = 1
	}
	if config.QuestionBatch <= 0 {
		config.QuestionBatch = 100
	}
	if config.PollInterval <= 0 {
		config.PollInterval = 5 * time.Second
	}

	// 两个队列各 Concurrency 个循环，每个循环常驻一个 goroutine。
	pool, err := ants.NewPool(2*config.Concurrency, ants.WithPanicHandler(func(p interface{}) {
		logger.Errorw("工作循环 panic", "panic", p)
	}))
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}

	return &Worker{
		jobs:        jobs,
		questions:   questions,
		ingestor:    ingestor,
		recommender: recommender,
		config:      config,
		pool:        pool,
	}, nil
}

// Run 启动所有认领循环并阻塞，直到 ctx 取消且所有循环退出。
func (w *Worker) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	submit := func(queue string, drain func(context.Context) (int, error)) error {
		wg.Add(1)
		err := w.pool.Submit(func() {
			defer wg.Done()
			w.loop(ctx, queue, drain)
		})
		if err != nil {
			wg.Done()
			return fmt.Errorf("submit %s loop: %w", queue, err)
		}
		return nil
	}

	for i := 0; i < w.config.Concurrency; i++ {
		if err := submit(queueJobs, w.drainJobs); err != nil {
			cancel()
			wg.Wait()
			return err
		}
		if err := submit(queueQuestions, w.drainQuestions); err != nil {
			cancel()
			wg.Wait()
			return err
		}
	}

	logger.Infow("工作循环已启动",
		"concurrency", w.config.Concurrency,
		"job_batch", w.config.JobBatch,
		"question_batch", w.config.QuestionBatch,
		"poll_interval", w.config.PollInterval.String(),
	)
	wg.Wait()
	return nil
}

// Close 释放 goroutine 池。应在 Run 返回后调用。
func (w *Worker) Close() {
	w.pool.Release()
}

// loop 反复认领并处理，队列为空或出错时休眠一个轮询间隔。
func (w *Worker) loop(ctx context.Context, queue string, drain func(context.Context) (int, error)) {
	for {
		n, err := drain(ctx)
		if err != nil {
			logger.Errorw("队列处理出错", "queue", queue, "error", err.Error())
		}
		if ctx.Err() != nil {
			logger.Infow("工作循环退出", "queue", queue)
			return
		}
		if n > 0 && err == nil {
			continue
		}
		select {
		case <-ctx.Done():
			logger.Infow("工作循环退出", "queue", queue)
			return
		case <-time.After(w.config.PollInterval):
		}
	}
}

// drainJobs 认领一批抓取任务并逐项执行。返回已记录结果的任务数。
//
// 认领会话必须用不可取消的 context 打开：会话事务由 Begin 的
// context 管理，若随根 context 一起取消，已记录的结果会随事务
// 整体回滚。ctx 只传给任务执行本身，关停时中断的是进行中的
// EDGAR/LLM 调用，而不是结果提交。
func (w *Worker) drainJobs(ctx context.Context) (int, error) {
	opCtx := context.WithoutCancel(ctx)

	claim, err := w.jobs.Claim(opCtx, w.config.JobBatch)
	if err != nil {
		return 0, err
	}
	items := claim.Items()
	if len(items) == 0 {
		return 0, claim.Close()
	}

	n := 0
	for _, job := range items {
		if ctx.Err() != nil {
			break
		}

		result, runErr := w.ingestor.Run(ctx, job)
		if runErr != nil {
			// 关停中断的任务不记录结果，保持可认领，重启后重试。
			if ctx.Err() != nil {
				break
			}
			logger.Errorw("抓取任务失败", "job_id", job.ID, "cik", job.CIK, "year", job.Year, "error", runErr.Error())
			if err := claim.Fail(opCtx, job, runErr); err != nil {
				_ = claim.Abort()
				return n, err
			}
			n++
			continue
		}

		if err := claim.Complete(opCtx, job, result); err != nil {
			_ = claim.Abort()
			return n, err
		}
		logger.Infow("抓取任务完成",
			"job_id", job.ID,
			"cik", job.CIK,
			"year", job.Year,
			"filings_found", result.FilingsFound,
			"filings_ingested", result.FilingsIngested,
			"filings_skipped", result.FilingsSkipped,
			"questions_created", result.QuestionsCreated,
		)
		n++
	}

	return n, claim.Close()
}

// drainQuestions 认领一批议题并逐项生成投票建议。返回已记录结果的议题数。
func (w *Worker) drainQuestions(ctx context.Context) (int, error) {
	opCtx := context.WithoutCancel(ctx)

	claim, err := w.questions.Claim(opCtx, w.config.QuestionBatch)
	if err != nil {
		return 0, err
	}
	items := claim.Items()
	if len(items) == 0 {
		return 0, claim.Close()
	}

	n := 0
	for _, question := range items {
		if ctx.Err() != nil {
			break
		}

		rec, recErr := w.recommender.Recommend(ctx, question)
		if recErr != nil {
			if ctx.Err() != nil {
				break
			}
			logger.Errorw("投票建议生成失败", "question_id", question.ID, "filing_id", question.FilingID, "error", recErr.Error())
			if err := claim.Fail(opCtx, question, recErr); err != nil {
				_ = claim.Abort()
				return n, err
			}
			n++
			continue
		}

		if err := claim.Complete(opCtx, question, rec); err != nil {
			_ = claim.Abort()
			return n, err
		}
		logger.Debugw("投票建议已写入",
			"question_id", question.ID,
			"filing_id", question.FilingID,
			"vote", rec.VotingRecommendation,
		)
		n++
	}

	return n, claim.Close()
}
