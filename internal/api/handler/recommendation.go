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

// RecommendationHandler handles voting recommendation queries.
type RecommendationHandler struct {
	store store.Factory
}

// NewRecommendationHandler creates a new RecommendationHandler.
func NewRecommendationHandler(factory store.Factory) *RecommendationHandler {
	return &RecommendationHandler{store: factory}
}

// ListByFiling returns the generated voting recommendations for one filing.
func (h *RecommendationHandler) ListByFiling(c *gin.Context) {
	filingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, errno.ErrInvalidParam.WithMessage("filing id must be a positive integer"))
		return
	}

	ctx := c.Request.Context()

	if _, err := h.store.Filings().Get(ctx, filingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			response.Fail(c, errno.ErrFilingNotFound)
			return
		}
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}

	recs, err := h.store.Recommendations().ListByFiling(ctx, filingID)
	if err != nil {
		logger.Errorw("查询投票建议失败", "filing_id", filingID, "error", err)
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}
	if recs == nil {
		recs = []*model.Recommendation{}
	}

	response.PageOK(c, recs, int64(len(recs)))
}
