// Package response writes the uniform JSON envelope used by the ProxyScope API.
package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	govalidator "github.com/go-playground/validator/v10"

	"github.com/kart-io/proxyscope/pkg/errno"
	"github.com/kart-io/proxyscope/pkg/server"
)

// Response is the envelope every API endpoint returns.
type Response struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// Page wraps a list payload with its total row count.
type Page struct {
	TotalCount int64       `json:"totalCount"`
	Items      interface{} `json:"items"`
}

func envelope(c *gin.Context, code int, message string, data interface{}) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		Data:      data,
		RequestID: server.GetRequestID(c),
		Timestamp: time.Now().UnixMilli(),
	}
}

// OK writes a 200 envelope with data.
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, envelope(c, errno.OK.Code, errno.OK.MessageEN, data))
}

// Created writes a 201 envelope with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, envelope(c, errno.OK.Code, errno.OK.MessageEN, data))
}

// PageOK writes a 200 envelope with a paginated list.
func PageOK(c *gin.Context, items interface{}, total int64) {
	OK(c, Page{TotalCount: total, Items: items})
}

// Fail writes the envelope for a registered error, using its HTTP status.
func Fail(c *gin.Context, e *errno.Errno) {
	c.JSON(e.HTTP, envelope(c, e.Code, e.MessageEN, nil))
}

// FailWithError coerces err into an Errno and writes it. Unregistered
// errors map to ErrInternal without leaking the cause to the client.
func FailWithError(c *gin.Context, err error) {
	Fail(c, errno.FromError(err))
}

// FailWithBinding writes a 400 envelope for a gin binding failure.
// Field-level validation errors are listed in the response data.
func FailWithBinding(c *gin.Context, err error) {
	var verrs govalidator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]gin.H, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, gin.H{
				"field": fe.Field(),
				"tag":   fe.Tag(),
				"param": fe.Param(),
			})
		}
		e := errno.ErrValidationFailed
		c.JSON(e.HTTP, envelope(c, e.Code, e.MessageEN, fields))
		return
	}
	Fail(c, errno.ErrBadRequest.WithMessage("invalid request: %v", err))
}
