// Package app provides the ProxyScope worker application.
package app

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/proxyscope/internal/pipeline"
	"github.com/kart-io/proxyscope/internal/pkg/chunk"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/internal/worker/biz"
	"github.com/kart-io/proxyscope/pkg/app"
	"github.com/kart-io/proxyscope/pkg/component/postgres"
	"github.com/kart-io/proxyscope/pkg/component/redis"
	"github.com/kart-io/proxyscope/pkg/edgar"
	"github.com/kart-io/proxyscope/pkg/llm"
	"github.com/kart-io/proxyscope/pkg/llm/resilience"

	// Register LLM providers.
	_ "github.com/kart-io/proxyscope/pkg/llm/ollama"
	_ "github.com/kart-io/proxyscope/pkg/llm/openai"
)

const (
	appName        = "proxyscope-worker"
	appDescription = `ProxyScope Worker

The pipeline worker for the ProxyScope proxy-statement analysis platform.

This worker drains two PostgreSQL-backed queues:
  - Scrape jobs: fetch DEF 14A filings from SEC EDGAR, chunk and embed them,
    and extract the ballot questions
  - Questions: retrieve filing context and generate voting recommendations

Rows are claimed with FOR UPDATE SKIP LOCKED, so any number of worker
processes can share one database.`
)

// NewApp creates a new worker application instance.
func NewApp() *app.App {
	opts := NewOptions()

	return app.NewApp(
		app.WithName(appName),
		app.WithDescription(appDescription),
		app.WithOptions(opts),
		app.WithRunFunc(func() error {
			return Run(opts)
		}),
	)
}

// Run runs the worker with the given options.
func Run(opts *Options) error {
	// 1. 初始化日志
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting worker...")

	// 2. 初始化 PostgreSQL 与存储层
	pgClient, err := postgres.New(opts.Postgres)
	if err != nil {
		return fmt.Errorf("failed to initialize postgres: %w", err)
	}
	defer func() { _ = pgClient.Close() }()

	factory, err := store.GetFactory(pgClient)
	if err != nil {
		return fmt.Errorf("failed to initialize store factory: %w", err)
	}
	if err := factory.AutoMigrate(); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	// 3. 初始化 Redis（可选，用于 embedding 缓存）
	var redisClient *goredis.Client
	if opts.Redis.Enabled {
		rc, err := redis.New(opts.Redis)
		if err != nil {
			return fmt.Errorf("failed to initialize redis: %w", err)
		}
		defer func() { _ = rc.Close() }()
		redisClient = rc.RDB()
		logger.Info("Redis embedding cache enabled")
	}

	// 4. 初始化 LLM 供应商
	embedder, err := buildEmbeddingProvider(opts, redisClient)
	if err != nil {
		return err
	}
	chat, err := buildChatProvider(opts)
	if err != nil {
		return err
	}
	logger.Infow("LLM providers initialized", "embedding", embedder.Name(), "chat", chat.Name())

	// 5. 初始化 EDGAR 客户端
	edgarClient, err := edgar.New(opts.Edgar)
	if err != nil {
		return fmt.Errorf("failed to initialize edgar client: %w", err)
	}

	// 6. 初始化处理链
	tokenizer, err := chunk.NewTiktokenTokenizer(opts.Pipeline.Encoding)
	if err != nil {
		return fmt.Errorf("failed to load tokenizer: %w", err)
	}
	splitter, err := chunk.NewSplitter(tokenizer, opts.Pipeline.ChunkWindow, opts.Pipeline.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("failed to create splitter: %w", err)
	}
	rules, err := pipeline.LoadPolicyRules(opts.Pipeline.PolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load policy rules: %w", err)
	}

	retriever := pipeline.NewRetriever(factory.Chunks())
	extractor := pipeline.NewExtractor(embedder, chat, retriever, factory.Questions(), opts.Pipeline.TopK)
	ingestor := pipeline.NewIngestor(factory, edgarClient, embedder, extractor, splitter, opts.Embedding.Dimensions)
	recommender := pipeline.NewRecommender(embedder, chat, retriever, factory.Filings(), rules, opts.Pipeline.TopK)

	// 7. 初始化工作循环
	jobQueue, questionQueue := biz.StoreQueues(factory)
	worker, err := biz.NewWorker(jobQueue, questionQueue, ingestor, recommender, &biz.Config{
		Concurrency:   opts.Worker.Concurrency,
		JobBatch:      opts.Worker.JobBatch,
		QuestionBatch: opts.Worker.QuestionBatch,
		PollInterval:  opts.Worker.PollInterval,
	})
	if err != nil {
		return fmt.Errorf("failed to create worker: %w", err)
	}
	defer worker.Close()

	// 8. 运行直到收到终止信号
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("Worker is ready")
	return worker.Run(ctx)
}

// buildEmbeddingProvider 组装 embedding 调用栈：
// 供应商 → 重试/熔断 → Redis 缓存（可选）→ 进程内 LRU 缓存。
// 探测查询对每份文件都重复出现，缓存层显著减少外部调用。
func buildEmbeddingProvider(opts *Options, redisClient *goredis.Client) (llm.EmbeddingProvider, error) {
	provider, err := llm.NewEmbeddingProvider(opts.Embedding.Provider, opts.Embedding.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding provider: %w", err)
	}

	var embedder llm.EmbeddingProvider = resilience.NewResilientEmbeddingProvider(provider, nil, nil)

	if redisClient != nil {
		embedder = llm.NewCachedEmbeddingProvider(embedder, redisClient, nil)
	}

	memo, err := llm.NewMemoEmbeddingProvider(embedder, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding memo cache: %w", err)
	}
	return memo, nil
}

// buildChatProvider 组装 chat 调用栈：供应商 → 重试/熔断。
func buildChatProvider(opts *Options) (llm.ChatProvider, error) {
	provider, err := llm.NewChatProvider(opts.Chat.Provider, opts.Chat.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to create chat provider: %w", err)
	}
	return resilience.NewResilientChatProvider(provider, nil, nil), nil
}
