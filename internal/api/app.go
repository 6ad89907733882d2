// Package app provides the ProxyScope API server application.
package app

import (
	"fmt"

	"github.com/gin-gonic/gin/binding"
	govalidator "github.com/go-playground/validator/v10"
	"github.com/kart-io/logger"

	"github.com/kart-io/proxyscope/internal/api/handler"
	"github.com/kart-io/proxyscope/internal/api/router"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/app"
	"github.com/kart-io/proxyscope/pkg/component/postgres"
	"github.com/kart-io/proxyscope/pkg/server"
	"github.com/kart-io/proxyscope/pkg/validator"
)

const (
	appName        = "proxyscope-api"
	appDescription = `ProxyScope API Server

The REST API for the ProxyScope proxy-statement analysis platform.

This server provides:
  - Scrape job submission and status lookup
  - Filing, ballot question and voting recommendation queries
  - Health checks backed by a database ping

Examples:
  # Start with default configuration
  proxyscope-api

  # Start with custom address
  proxyscope-api --http.addr=:8080

  # Use config file
  proxyscope-api -c /etc/proxyscope/api.yaml

Processing itself happens in proxyscope-worker; the API only enqueues
jobs and serves results.`
)

// NewApp creates a new API server application instance.
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

// Run runs the API server with the given options.
func Run(opts *Options) error {
	// 1. 初始化日志
	opts.Log.AddInitialField("service.name", appName)
	opts.Log.AddInitialField("service.version", app.GetVersion())
	if err := opts.Log.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting API service...")

	// 2. 注册自定义校验规则（cik、accession 等）到 gin 的绑定引擎
	if engine, ok := binding.Validator.Engine().(*govalidator.Validate); ok {
		validator.RegisterRules(engine)
	}

	// 3. 初始化 PostgreSQL 与存储层
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

	// 4. 初始化 Handler
	jobHandler := handler.NewJobHandler(factory)
	filingHandler := handler.NewFilingHandler(factory)
	questionHandler := handler.NewQuestionHandler(factory)
	recommendationHandler := handler.NewRecommendationHandler(factory)
	healthHandler := handler.NewHealthHandler(pgClient)
	logger.Info("Handlers initialized")

	// 5. 初始化服务器并注册路由
	srv := server.New(opts.HTTP)
	router.Register(srv.Engine(),
		jobHandler, filingHandler, questionHandler, recommendationHandler, healthHandler)

	// 6. 启动服务器
	logger.Info("API service is ready")
	return srv.Run()
}
