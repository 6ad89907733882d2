// Package router provides ProxyScope API routing.
package router

import (
	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/proxyscope/internal/api/handler"
)

// Register registers the API routes on the gin engine.
func Register(engine *gin.Engine,
	job *handler.JobHandler,
	filing *handler.FilingHandler,
	question *handler.QuestionHandler,
	recommendation *handler.RecommendationHandler,
	health *handler.HealthHandler,
) {
	engine.GET("/healthz", health.Check)

	v1 := engine.Group("/v1")
	{
		jobs := v1.Group("/jobs")
		{
			jobs.POST("", job.Create)
			jobs.GET("/:id", job.Get)
		}

		filings := v1.Group("/filings")
		{
			filings.GET("", filing.List)
			filings.GET("/:id", filing.Get)
			filings.GET("/:id/questions", question.ListByFiling)
			filings.GET("/:id/recommendations", recommendation.ListByFiling)
		}
	}

	logger.Info("HTTP routes registered")
}
