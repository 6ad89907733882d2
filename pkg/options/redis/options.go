// Package redis provides Redis configuration options.
package redis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/proxyscope/pkg/options"
)

// redactedPassword is the placeholder used when serializing passwords.
const redactedPassword = "[REDACTED]"

// Options defines configuration options for Redis.
type Options struct {
	// Enabled 控制是否启用 Redis（例如 embedding 缓存可选）。
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	Host         string        `json:"host" mapstructure:"host"`
	Port         int           `json:"port" mapstructure:"port"`
	Password     string        `json:"-" mapstructure:"password"` // Excluded from JSON serialization
	Database     int           `json:"database" mapstructure:"database"`
	MaxRetries   int           `json:"max-retries" mapstructure:"max-retries"`
	PoolSize     int           `json:"pool-size" mapstructure:"pool-size"`
	MinIdleConns int           `json:"min-idle-conns" mapstructure:"min-idle-conns"`
	DialTimeout  time.Duration `json:"dial-timeout" mapstructure:"dial-timeout"`
	ReadTimeout  time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	PoolTimeout  time.Duration `json:"pool-timeout" mapstructure:"pool-timeout"`
}

// optionsForJSON is used for JSON marshaling with password redacted.
type optionsForJSON struct {
	Enabled      bool          `json:"enabled"`
	Host         string        `json:"host"`
	Port         int           `json:"port"`
	Password     string        `json:"password"`
	Database     int           `json:"database"`
	MaxRetries   int           `json:"max-retries"`
	PoolSize     int           `json:"pool-size"`
	MinIdleConns int           `json:"min-idle-conns"`
	DialTimeout  time.Duration `json:"dial-timeout"`
	ReadTimeout  time.Duration `json:"read-timeout"`
	WriteTimeout time.Duration `json:"write-timeout"`
	PoolTimeout  time.Duration `json:"pool-timeout"`
}

// MarshalJSON implements json.Marshaler with password redaction.
// This prevents accidental password exposure in logs or debug output.
func (o *Options) MarshalJSON() ([]byte, error) {
	password := redactedPassword
	if o.Password == "" {
		password = ""
	}

	return json.Marshal(optionsForJSON{
		Enabled:      o.Enabled,
		Host:         o.Host,
		Port:         o.Port,
		Password:     password,
		Database:     o.Database,
		MaxRetries:   o.MaxRetries,
		PoolSize:     o.PoolSize,
		MinIdleConns: o.MinIdleConns,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolTimeout:  o.PoolTimeout,
	})
}

// String returns a string representation with password redacted.
// Safe for logging and debugging.
func (o *Options) String() string {
	password := redactedPassword
	if o.Password == "" {
		password = ""
	}
	return fmt.Sprintf("Redis{enabled=%t, host=%s, port=%d, password=%s, database=%d}",
		o.Enabled, o.Host, o.Port, password, o.Database)
}

// NewOptions creates a new Options object with default values.
func NewOptions() *Options {
	return &Options{
		Enabled:      false,
		Host:         "127.0.0.1",
		Port:         6379,
		Password:     "",
		Database:     0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 5,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// Complete fills in any fields not set that are required to have valid data.
func (o *Options) Complete() error {
	return nil
}

// Validate checks if the options are valid.
func (o *Options) Validate() []error {
	if !o.Enabled {
		return nil
	}

	// 如果 CLI 参数为空，从环境变量读取
	if o.Password == "" {
		o.Password = os.Getenv("REDIS_PASSWORD")
	}

	var errs []error
	if o.Host == "" {
		errs = append(errs, fmt.Errorf("redis host cannot be empty"))
	}
	if o.Port <= 0 || o.Port > 65535 {
		errs = append(errs, fmt.Errorf("redis port %d out of range", o.Port))
	}
	if o.Database < 0 || o.Database > 15 {
		errs = append(errs, fmt.Errorf("redis database %d out of range", o.Database))
	}
	return errs
}

// AddFlags adds flags for Redis options to the specified FlagSet.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	p := options.Join(prefixes...)
	if p == "" {
		p = "redis."
	}
	fs.BoolVar(&o.Enabled, p+"enabled", o.Enabled, "Enable Redis")
	fs.StringVar(&o.Host, p+"host", o.Host, "Redis host")
	fs.IntVar(&o.Port, p+"port", o.Port, "Redis port")
	fs.StringVar(&o.Password, p+"password", o.Password, "Redis password (DEPRECATED: use REDIS_PASSWORD env var instead)")
	fs.IntVar(&o.Database, p+"database", o.Database, "Redis database number")
	fs.IntVar(&o.MaxRetries, p+"max-retries", o.MaxRetries, "Redis max retries")
	fs.IntVar(&o.PoolSize, p+"pool-size", o.PoolSize, "Redis connection pool size")
	fs.IntVar(&o.MinIdleConns, p+"min-idle-conns", o.MinIdleConns, "Redis minimum idle connections")
	fs.DurationVar(&o.DialTimeout, p+"dial-timeout", o.DialTimeout, "Redis dial timeout")
	fs.DurationVar(&o.ReadTimeout, p+"read-timeout", o.ReadTimeout, "Redis read timeout")
	fs.DurationVar(&o.WriteTimeout, p+"write-timeout", o.WriteTimeout, "Redis write timeout")
	fs.DurationVar(&o.PoolTimeout, p+"pool-timeout", o.PoolTimeout, "Redis pool timeout")
}

var _ options.IOptions = (*Options)(nil)
