package errno

import (
	"net/http"
)

// Service codes (AA).
const (
	ServiceCommon  = 0
	ServiceAPI     = 4
	ServiceWorker  = 5
	ServiceInfraDB = 10
	ServiceEdgar   = 90
	ServiceLLM     = 91
)

// Category codes (BB).
const (
	CategorySuccess   = 0
	CategoryRequest   = 1
	CategoryNotFound  = 4
	CategoryConflict  = 5
	CategoryRateLimit = 6
	CategoryInternal  = 7
	CategoryDatabase  = 8
	CategoryNetwork   = 10
	CategoryTimeout   = 11
	CategoryConfig    = 12
)

// OK represents a successful operation.
var OK = Register(&Errno{
	Code:      0,
	HTTP:      http.StatusOK,
	MessageEN: "Success",
	MessageZH: "成功",
})

// Common errors.
var (
	// ErrBadRequest indicates a malformed request.
	ErrBadRequest = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 0),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Bad request",
		MessageZH: "请求错误",
	})

	// ErrInvalidParam indicates an invalid parameter.
	ErrInvalidParam = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 1),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Invalid parameter",
		MessageZH: "参数无效",
	})

	// ErrValidationFailed indicates request validation failure.
	ErrValidationFailed = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRequest, 2),
		HTTP:      http.StatusBadRequest,
		MessageEN: "Validation failed",
		MessageZH: "验证失败",
	})

	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryNotFound, 0),
		HTTP:      http.StatusNotFound,
		MessageEN: "Resource not found",
		MessageZH: "资源不存在",
	})

	// ErrConflict indicates the request conflicts with existing state.
	ErrConflict = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryConflict, 0),
		HTTP:      http.StatusConflict,
		MessageEN: "Resource conflict",
		MessageZH: "资源冲突",
	})

	// ErrTooManyRequests indicates the caller is being rate limited.
	ErrTooManyRequests = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryRateLimit, 0),
		HTTP:      http.StatusTooManyRequests,
		MessageEN: "Too many requests",
		MessageZH: "请求过于频繁",
	})

	// ErrInternal indicates an unexpected server-side failure.
	ErrInternal = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryInternal, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Internal server error",
		MessageZH: "服务器内部错误",
	})

	// ErrConfiguration indicates invalid or missing configuration.
	ErrConfiguration = Register(&Errno{
		Code:      MakeCode(ServiceCommon, CategoryConfig, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Configuration error",
		MessageZH: "配置错误",
	})
)

// API service errors.
var (
	// ErrJobNotFound indicates the scrape job ID is unknown.
	ErrJobNotFound = Register(&Errno{
		Code:      MakeCode(ServiceAPI, CategoryNotFound, 0),
		HTTP:      http.StatusNotFound,
		MessageEN: "Scrape job not found",
		MessageZH: "抓取任务不存在",
	})

	// ErrFilingNotFound indicates the filing ID is unknown.
	ErrFilingNotFound = Register(&Errno{
		Code:      MakeCode(ServiceAPI, CategoryNotFound, 1),
		HTTP:      http.StatusNotFound,
		MessageEN: "Filing not found",
		MessageZH: "代理声明不存在",
	})

	// ErrQuestionNotFound indicates the question ID is unknown.
	ErrQuestionNotFound = Register(&Errno{
		Code:      MakeCode(ServiceAPI, CategoryNotFound, 2),
		HTTP:      http.StatusNotFound,
		MessageEN: "Question not found",
		MessageZH: "投票议题不存在",
	})
)

// Infrastructure errors.
var (
	// ErrDatabase indicates a database operation failure.
	ErrDatabase = Register(&Errno{
		Code:      MakeCode(ServiceInfraDB, CategoryDatabase, 0),
		HTTP:      http.StatusInternalServerError,
		MessageEN: "Database error",
		MessageZH: "数据库错误",
	})
)

// Third-party errors.
var (
	// ErrEdgarUnavailable indicates the SEC EDGAR API could not be reached.
	ErrEdgarUnavailable = Register(&Errno{
		Code:      MakeCode(ServiceEdgar, CategoryNetwork, 0),
		HTTP:      http.StatusBadGateway,
		MessageEN: "EDGAR service unavailable",
		MessageZH: "EDGAR 服务不可用",
	})

	// ErrLLMUnavailable indicates the configured LLM provider failed.
	ErrLLMUnavailable = Register(&Errno{
		Code:      MakeCode(ServiceLLM, CategoryNetwork, 0),
		HTTP:      http.StatusBadGateway,
		MessageEN: "LLM provider unavailable",
		MessageZH: "LLM 服务不可用",
	})
)
