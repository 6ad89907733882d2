// Package handler provides HTTP handlers for the ProxyScope API.
package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/edgar"
	"github.com/kart-io/proxyscope/pkg/errno"
	"github.com/kart-io/proxyscope/pkg/id"
	"github.com/kart-io/proxyscope/pkg/response"
)

// JobHandler handles scrape job requests.
type JobHandler struct {
	store store.Factory
}

// NewJobHandler creates a new JobHandler.
func NewJobHandler(factory store.Factory) *JobHandler {
	return &JobHandler{store: factory}
}

// CreateJobRequest is the request body for enqueuing a scrape job.
type CreateJobRequest struct {
	// CIK is the SEC Central Index Key, 1-10 decimal digits.
	CIK string `json:"cik" binding:"required,cik"`
	// Year is the filing year to scrape.
	Year int `json:"year" binding:"required,filingyear"`
	// Replace re-ingests filings that are already stored.
	Replace bool `json:"replace"`
}

// CreateJobResponse carries the identifier assigned to an accepted job.
type CreateJobResponse struct {
	JobID  string       `json:"job_id"`
	Status model.Status `json:"status"`
}

// Create accepts a scrape job for one company-year and enqueues it for
// the workers. The job is processed asynchronously; poll Get for results.
func (h *JobHandler) Create(c *gin.Context) {
	var req CreateJobRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.FailWithBinding(c, err)
		return
	}

	// CIK 统一成十位零填充形式，与入库 filing 的写法保持一致。
	n, err := edgar.ParseCIK(req.CIK)
	if err != nil {
		response.Fail(c, errno.ErrInvalidParam.WithMessage("invalid cik: %v", err))
		return
	}

	job := &model.ScrapeJob{
		ID:              id.NewULID(),
		CIK:             edgar.PadCIK(n),
		Year:            req.Year,
		ReplaceExisting: req.Replace,
		Status:          model.StatusNew,
	}
	if err := h.store.ScrapeJobs().Create(c.Request.Context(), job); err != nil {
		logger.Errorw("创建抓取任务失败", "cik", job.CIK, "year", job.Year, "error", err)
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}

	logger.Infow("抓取任务已入队", "job_id", job.ID, "cik", job.CIK, "year", job.Year)
	response.Created(c, CreateJobResponse{JobID: job.ID, Status: job.Status})
}

// Get returns one scrape job with its status, result summary and last error.
func (h *JobHandler) Get(c *gin.Context) {
	jobID := c.Param("id")
	if !id.IsValid(jobID) {
		response.Fail(c, errno.ErrInvalidParam.WithMessage("job id must be a ULID"))
		return
	}

	job, err := h.store.ScrapeJobs().Get(c.Request.Context(), jobID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Fail(c, errno.ErrJobNotFound)
		return
	}
	if err != nil {
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}

	response.OK(c, job)
}
