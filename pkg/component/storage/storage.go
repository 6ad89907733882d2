// Package storage provides a unified interface for storage backends in ProxyScope.
//
// It defines the core abstractions every storage implementation follows, so
// Postgres and Redis clients behave consistently for connectivity checks,
// health reporting and shutdown.
package storage

import (
	"context"
	"time"
)

// Client is the base interface implemented by all storage clients.
type Client interface {
	// Name returns a short identifier for the backend, e.g. "postgres".
	Name() string

	// Ping verifies connectivity to the backend.
	Ping(ctx context.Context) error

	// Close releases all resources held by the client.
	Close() error

	// Health returns a checker function suitable for health endpoints.
	Health() HealthChecker
}

// HealthChecker performs a single health probe.
type HealthChecker func() error

// HealthStatus is the result of one health probe.
type HealthStatus struct {
	// Healthy reports whether the probe succeeded.
	Healthy bool `json:"healthy"`

	// Error holds the probe failure, nil when healthy.
	Error error `json:"-"`

	// Latency is how long the probe took.
	Latency time.Duration `json:"latency"`
}

// Message renders the status for JSON payloads.
func (s HealthStatus) Message() string {
	if s.Healthy {
		return "ok"
	}
	if s.Error != nil {
		return s.Error.Error()
	}
	return "unhealthy"
}
