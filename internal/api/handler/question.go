package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/model"
	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/errno"
	"github.com/kart-io/proxyscope/pkg/response"
)

// QuestionHandler handles ballot question queries.
type QuestionHandler struct {
	store store.Factory
}

// NewQuestionHandler creates a new QuestionHandler.
func NewQuestionHandler(factory store.Factory) *QuestionHandler {
	return &QuestionHandler{store: factory}
}

// ListQuestionsRequest filters the questions of one filing.
type ListQuestionsRequest struct {
	// Status narrows to one processing state when set.
	Status string `form:"status" binding:"omitempty,oneof=NEW ERROR DONE"`
}

// ListByFiling returns the voting items extracted from one filing in
// question-key order.
func (h *QuestionHandler) ListByFiling(c *gin.Context) {
	filingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, errno.ErrInvalidParam.WithMessage("filing id must be a positive integer"))
		return
	}

	var req ListQuestionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.FailWithBinding(c, err)
		return
	}

	ctx := c.Request.Context()

	// 先确认 filing 存在，把“没有议题”和“没有这份文件”区分开。
	if _, err := h.store.Filings().Get(ctx, filingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, errno.ErrFilingNotFound)
			return
		}
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}

	questions, err := h.store.Questions().ListByFiling(ctx, filingID, model.Status(req.Status))
	if err != nil {
		logger.Errorw("查询投票议题失败", "filing_id", filingID, "error", err)
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}
	if questions == nil {
		questions = []*model.Question{}
	}

	response.PageOK(c, questions, int64(len(questions)))
}
