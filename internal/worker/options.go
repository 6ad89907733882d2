// Package app provides the ProxyScope worker application.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/proxyscope/internal/pipeline"
	"github.com/kart-io/proxyscope/internal/pkg/chunk"
	edgaropts "github.com/kart-io/proxyscope/pkg/options/edgar"
	llmopts "github.com/kart-io/proxyscope/pkg/options/llm"
	logopts "github.com/kart-io/proxyscope/pkg/options/logger"
	postgresopts "github.com/kart-io/proxyscope/pkg/options/postgres"
	redisopts "github.com/kart-io/proxyscope/pkg/options/redis"
)

// Options contains all worker options.
type Options struct {
	// Log contains logger configuration.
	Log *logopts.Options `json:"log" mapstructure:"log"`

	// Postgres contains PostgreSQL configuration.
	Postgres *postgresopts.Options `json:"postgres" mapstructure:"postgres"`

	// Redis contains the optional embedding cache backend.
	Redis *redisopts.Options `json:"redis" mapstructure:"redis"`

	// Edgar contains SEC EDGAR client configuration.
	Edgar *edgaropts.Options `json:"edgar" mapstructure:"edgar"`

	// Embedding contains the embedding provider configuration.
	Embedding *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// Chat contains the chat provider configuration.
	Chat *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// Pipeline contains extraction pipeline configuration.
	Pipeline *PipelineOptions `json:"pipeline" mapstructure:"pipeline"`

	// Worker contains claim loop configuration.
	Worker *WorkerOptions `json:"worker" mapstructure:"worker"`
}

// PipelineOptions 定义抽取处理链配置。
type PipelineOptions struct {
	// ChunkWindow 切块窗口大小（token 数）。
	ChunkWindow int `json:"chunk-window" mapstructure:"chunk-window"`

	// ChunkOverlap 相邻切块的重叠大小（token 数）。
	ChunkOverlap int `json:"chunk-overlap" mapstructure:"chunk-overlap"`

	// Encoding tiktoken BPE 编码名称。
	Encoding string `json:"encoding" mapstructure:"encoding"`

	// TopK 检索返回的切块数量。
	TopK int `json:"top-k" mapstructure:"top-k"`

	// PolicyFile 投票政策规则 YAML 文件路径，为空时使用内置规则。
	PolicyFile string `json:"policy-file" mapstructure:"policy-file"`
}

// NewPipelineOptions 创建默认处理链配置。
func NewPipelineOptions() *PipelineOptions {
	return &PipelineOptions{
		ChunkWindow:  800,
		ChunkOverlap: 200,
		Encoding:     chunk.DefaultEncoding,
		TopK:         pipeline.DefaultTopK,
	}
}

// WorkerOptions 定义工作循环配置。
type WorkerOptions struct {
	// Concurrency 每个队列的独立认领循环数量。
	Concurrency int `json:"concurrency" mapstructure:"concurrency"`

	// JobBatch 单次认领的抓取任务数量。
	JobBatch int `json:"job-batch" mapstructure:"job-batch"`

	// QuestionBatch 单次认领的议题数量。
	QuestionBatch int `json:"question-batch" mapstructure:"question-batch"`

	// PollInterval 队列为空时的轮询间隔。
	PollInterval time.Duration `json:"poll-interval" mapstructure:"poll-interval"`
}

// NewWorkerOptions 创建默认工作循环配置。
func NewWorkerOptions() *WorkerOptions {
	return &WorkerOptions{
		Concurrency:   2,
		JobBatch:      1,
		QuestionBatch: 100,
		PollInterval:  5 * time.Second,
	}
}

// NewOptions creates new Options with defaults.
func NewOptions() *Options {
	return &Options{
		Log:       logopts.NewOptions(),
		Postgres:  postgresopts.NewOptions(),
		Redis:     redisopts.NewOptions(),
		Edgar:     edgaropts.NewOptions(),
		Embedding: llmopts.NewEmbeddingOptions(),
		Chat:      llmopts.NewChatOptions(),
		Pipeline:  NewPipelineOptions(),
		Worker:    NewWorkerOptions(),
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet) {
	o.Log.AddFlags(fs)
	o.Postgres.AddFlags(fs)
	o.Redis.AddFlags(fs)
	o.Edgar.AddFlags(fs)
	o.Embedding.AddFlags(fs, "embedding")
	o.Chat.AddFlags(fs, "chat")
	o.addPipelineFlags(fs)
	o.addWorkerFlags(fs)
}

func (o *Options) addPipelineFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Pipeline.ChunkWindow, "pipeline.chunk-window", o.Pipeline.ChunkWindow, "Chunk window size in tokens")
	fs.IntVar(&o.Pipeline.ChunkOverlap, "pipeline.chunk-overlap", o.Pipeline.ChunkOverlap, "Chunk overlap in tokens")
	fs.StringVar(&o.Pipeline.Encoding, "pipeline.encoding", o.Pipeline.Encoding, "Tiktoken BPE encoding name")
	fs.IntVar(&o.Pipeline.TopK, "pipeline.top-k", o.Pipeline.TopK, "Number of chunks retrieved per prompt")
	fs.StringVar(&o.Pipeline.PolicyFile, "pipeline.policy-file", o.Pipeline.PolicyFile, "YAML file with voting policy rules (empty = built-in rules)")
}

func (o *Options) addWorkerFlags(fs *pflag.FlagSet) {
	fs.IntVar(&o.Worker.Concurrency, "worker.concurrency", o.Worker.Concurrency, "Claim loops per queue")
	fs.IntVar(&o.Worker.JobBatch, "worker.job-batch", o.Worker.JobBatch, "Scrape jobs claimed per batch")
	fs.IntVar(&o.Worker.QuestionBatch, "worker.question-batch", o.Worker.QuestionBatch, "Questions claimed per batch")
	fs.DurationVar(&o.Worker.PollInterval, "worker.poll-interval", o.Worker.PollInterval, "Sleep between claims when a queue is empty")
}

// Validate validates the options.
func (o *Options) Validate() error {
	if err := o.Log.Validate(); err != nil {
		return err
	}
	if errs := o.Postgres.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if errs := o.Redis.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if errs := o.Edgar.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if errs := o.Embedding.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if errs := o.Chat.Validate(); len(errs) > 0 {
		return errors.Join(errs...)
	}
	if o.Embedding.Dimensions <= 0 {
		return fmt.Errorf("embedding.dimensions must be positive")
	}
	if o.Pipeline.ChunkWindow <= 0 {
		return fmt.Errorf("pipeline.chunk-window must be positive")
	}
	if o.Pipeline.ChunkOverlap <= 0 || o.Pipeline.ChunkOverlap >= o.Pipeline.ChunkWindow {
		return fmt.Errorf("pipeline.chunk-overlap must be in (0, chunk-window)")
	}
	if o.Pipeline.TopK <= 0 {
		return fmt.Errorf("pipeline.top-k must be positive")
	}
	if o.Worker.Concurrency <= 0 {
		return fmt.Errorf("worker.concurrency must be positive")
	}
	if o.Worker.JobBatch <= 0 {
		return fmt.Errorf("worker.job-batch must be positive")
	}
	if o.Worker.QuestionBatch <= 0 {
		return fmt.Errorf("worker.question-batch must be positive")
	}
	if o.Worker.PollInterval <= 0 {
		return fmt.Errorf("worker.poll-interval must be positive")
	}
	return nil
}

// Complete completes the options.
func (o *Options) Complete() error {
	if err := o.Postgres.Complete(); err != nil {
		return err
	}
	if err := o.Redis.Complete(); err != nil {
		return err
	}
	if err := o.Edgar.Complete(); err != nil {
		return err
	}
	if err := o.Embedding.Complete(); err != nil {
		return err
	}
	return o.Chat.Complete()
}
