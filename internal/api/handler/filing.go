package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	"gorm.io/gorm"

	"github.com/kart-io/proxyscope/internal/store"
	"github.com/kart-io/proxyscope/pkg/edgar"
	"github.com/kart-io/proxyscope/pkg/errno"
	"github.com/kart-io/proxyscope/pkg/response"
)

// FilingHandler handles filing queries.
type FilingHandler struct {
	store store.Factory
}

// NewFilingHandler creates a new FilingHandler.
func NewFilingHandler(factory store.Factory) *FilingHandler {
	return &FilingHandler{store: factory}
}

// ListFilingsRequest is the query for listing filings.
type ListFilingsRequest struct {
	// CIK narrows the list to one company when set.
	CIK    string `form:"cik" binding:"omitempty,cik"`
	Offset int    `form:"offset,default=0" binding:"omitempty,min=0"`
	Limit  int    `form:"limit,default=50" binding:"omitempty,min=1,max=500"`
}

// List returns a page of stored filings, newest filing date first.
func (h *FilingHandler) List(c *gin.Context) {
	var req ListFilingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.FailWithBinding(c, err)
		return
	}

	// 查询参数接受带或不带前导零的 CIK，统一后再查。
	cik := req.CIK
	if cik != "" {
		n, err := edgar.ParseCIK(cik)
		if err != nil {
			response.Fail(c, errno.ErrInvalidParam.WithMessage("invalid cik: %v", err))
			return
		}
		cik = edgar.PadCIK(n)
	}

	list, err := h.store.Filings().List(c.Request.Context(), cik, req.Offset, req.Limit)
	if err != nil {
		logger.Errorw("查询代理声明列表失败", "cik", cik, "error", err)
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}

	response.PageOK(c, list.Items, list.TotalCount)
}

// Get returns one filing by row ID.
func (h *FilingHandler) Get(c *gin.Context) {
	filingID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.Fail(c, errno.ErrInvalidParam.WithMessage("filing id must be a positive integer"))
		return
	}

	filing, err := h.store.Filings().Get(c.Request.Context(), filingID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		response.Fail(c, errno.ErrFilingNotFound)
		return
	}
	if err != nil {
		response.FailWithError(c, errno.ErrDatabase.WithCause(err))
		return
	}

	response.OK(c, filing)
}
