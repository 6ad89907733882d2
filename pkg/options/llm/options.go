// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/proxyscope/pkg/options"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions 定义 LLM 供应商配置。
type ProviderOptions struct {
	// Provider 供应商名称（openai, ollama）。
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL API 基础地址。
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey API 密钥（OpenAI 等需要）。
	APIKey string `json:"-" mapstructure:"api-key"`

	// Model 使用的模型名称。
	Model string `json:"model" mapstructure:"model"`

	// Dimensions embedding 向量维度（0 表示使用模型默认值）。
	Dimensions int `json:"dimensions" mapstructure:"dimensions"`

	// Timeout 请求超时时间。
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries 最大重试次数。
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`

	// Organization 组织 ID（OpenAI 可选）。
	Organization string `json:"organization" mapstructure:"organization"`
}

// NewProviderOptions 创建默认 LLM 供应商配置。
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "openai",
		BaseURL:    "https://api.openai.com/v1",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// NewEmbeddingOptions 创建默认 Embedding 供应商配置。
func NewEmbeddingOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "text-embedding-3-small"
	opts.Dimensions = 1536
	return opts
}

// NewChatOptions 创建默认 Chat 供应商配置。
func NewChatOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "gpt-4o-mini"
	return opts
}

// ToConfigMap 转换为配置 map，用于供应商工厂。
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":     o.BaseURL,
		"api_key":      o.APIKey,
		"embed_model":  o.Model,
		"chat_model":   o.Model,
		"dimensions":   o.Dimensions,
		"timeout":      o.Timeout,
		"max_retries":  o.MaxRetries,
		"organization": o.Organization,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
// Prefixes distinguish multiple providers within one binary, e.g.
// AddFlags(fs, "embedding") registers "embedding.provider".
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	fs.StringVar(&o.Provider, p+"provider", o.Provider, "LLM provider (openai, ollama).")
	fs.StringVar(&o.BaseURL, p+"base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, p+"api-key", o.APIKey, "LLM API key (prefer the OPENAI_API_KEY env var).")
	fs.StringVar(&o.Model, p+"model", o.Model, "LLM model name.")
	fs.IntVar(&o.Dimensions, p+"dimensions", o.Dimensions, "Embedding vector dimensions (0 = model default).")
	fs.DurationVar(&o.Timeout, p+"timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "LLM maximum number of retries.")
	fs.StringVar(&o.Organization, p+"organization", o.Organization, "LLM organization ID (optional).")
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	// 如果 CLI 参数为空，从环境变量读取
	if o.APIKey == "" {
		o.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	// OpenAI 供应商需要 API key
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required for openai provider (set OPENAI_API_KEY)"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	if o.Dimensions < 0 {
		errs = append(errs, fmt.Errorf("dimensions cannot be negative"))
	}
	return errs
}

// Complete completes the LLM provider options with defaults.
func (o *ProviderOptions) Complete() error {
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return nil
}
