// Package edgar provides SEC EDGAR client configuration options.
package edgar

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/proxyscope/pkg/options"
)

var _ options.IOptions = (*Options)(nil)

// Options defines configuration options for the SEC EDGAR client.
//
// SEC fair-access policy requires every automated client to declare a
// User-Agent identifying the operator, and to stay under 10 requests per
// second. The defaults keep a comfortable margin below that ceiling.
type Options struct {
	// UserAgent 必须声明操作者身份，例如 "ProxyScope admin@example.com"。
	UserAgent string `json:"user-agent" mapstructure:"user-agent"`

	// SubmissionsBaseURL 提交索引 API 的基础地址。
	SubmissionsBaseURL string `json:"submissions-base-url" mapstructure:"submissions-base-url"`

	// ArchivesBaseURL 文档归档的基础地址。
	ArchivesBaseURL string `json:"archives-base-url" mapstructure:"archives-base-url"`

	// Timeout 单次请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries 最大重试次数。
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// RequestsPerSecond 全局限速（SEC 上限为 10/s）。
	RequestsPerSecond float64 `json:"requests-per-second" mapstructure:"requests-per-second"`

	// Burst 限速器允许的突发请求数。
	Burst int `json:"burst" mapstructure:"burst"`
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		UserAgent:          "ProxyScope/1.0 (contact@proxyscope.dev)",
		SubmissionsBaseURL: "https://data.sec.gov",
		ArchivesBaseURL:    "https://www.sec.gov",
		Timeout:            30 * time.Second,
		MaxRetries:         3,
		RequestsPerSecond:  8,
		Burst:              4,
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	if o.Burst <= 0 {
		o.Burst = 1
	}
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	var errs []error
	if strings.TrimSpace(o.UserAgent) == "" {
		errs = append(errs, fmt.Errorf("edgar user-agent is required by SEC fair-access policy"))
	}
	if o.SubmissionsBaseURL == "" {
		errs = append(errs, fmt.Errorf("edgar submissions-base-url cannot be empty"))
	}
	if o.ArchivesBaseURL == "" {
		errs = append(errs, fmt.Errorf("edgar archives-base-url cannot be empty"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("edgar timeout must be positive"))
	}
	if o.RequestsPerSecond <= 0 || o.RequestsPerSecond > 10 {
		errs = append(errs, fmt.Errorf("edgar requests-per-second must be in (0, 10], got %v", o.RequestsPerSecond))
	}
	return errs
}

// AddFlags adds flags for EDGAR options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	if p == "" {
		p = "edgar."
	}
	fs.StringVar(&o.UserAgent, p+"user-agent", o.UserAgent, "User-Agent sent to SEC EDGAR (must identify the operator)")
	fs.StringVar(&o.SubmissionsBaseURL, p+"submissions-base-url", o.SubmissionsBaseURL, "Base URL of the EDGAR submissions API")
	fs.StringVar(&o.ArchivesBaseURL, p+"archives-base-url", o.ArchivesBaseURL, "Base URL of the EDGAR document archives")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "EDGAR request timeout")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "EDGAR max retries per request")
	fs.Float64Var(&o.RequestsPerSecond, p+"requests-per-second", o.RequestsPerSecond, "EDGAR request rate limit")
	fs.IntVar(&o.Burst, p+"burst", o.Burst, "EDGAR rate limiter burst size")
}
