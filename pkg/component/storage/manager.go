package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"
)

// Manager is a registry for storage clients with lifecycle management.
// Services register their backends at startup and use the manager for
// health endpoints and shutdown.
type Manager struct {
	mu      sync.RWMutex
	clients map[string]Client
}

// NewManager creates a new storage manager instance.
func NewManager() *Manager {
	return &Manager{
		clients: make(map[string]Client),
	}
}

// Register registers a storage client under a unique name.
func (m *Manager) Register(name string, client Client) error {
	if name == "" {
		return ErrInvalidConfig.WithMessage("client name cannot be empty")
	}
	if client == nil {
		return ErrInvalidConfig.WithMessage("client cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.clients[name]; exists {
		return ErrInvalidConfig.WithMessage(fmt.Sprintf("client %q already registered", name))
	}
	m.clients[name] = client
	return nil
}

// MustRegister registers a client and panics on failure. Intended for
// service startup where a registration error is unrecoverable.
func (m *Manager) MustRegister(name string, client Client) {
	if err := m.Register(name, client); err != nil {
		panic(fmt.Sprintf("failed to register storage client: %v", err))
	}
}

// Get retrieves a storage client by name.
func (m *Manager) Get(name string) (Client, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	client, exists := m.clients[name]
	if !exists {
		return nil, ErrClientNotFound.WithMessage(fmt.Sprintf("client %q not found", name))
	}
	return client, nil
}

// Has checks if a client with the given name is registered.
func (m *Manager) Has(name string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, exists := m.clients[name]
	return exists
}

// Names returns all registered client names, sorted.
func (m *Manager) Names() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	names := make([]string, 0, len(m.clients))
	for name := range m.clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// HealthCheck probes a single client.
func (m *Manager) HealthCheck(ctx context.Context, name string) HealthStatus {
	client, err := m.Get(name)
	if err != nil {
		return HealthStatus{Healthy: false, Error: err}
	}

	start := time.Now()
	err = client.Ping(ctx)
	return HealthStatus{
		Healthy: err == nil,
		Error:   err,
		Latency: time.Since(start),
	}
}

// HealthCheckAll probes every registered client.
func (m *Manager) HealthCheckAll(ctx context.Context) map[string]HealthStatus {
	statuses := make(map[string]HealthStatus)
	for _, name := range m.Names() {
		statuses[name] = m.HealthCheck(ctx, name)
	}
	return statuses
}

// CloseAll closes every registered client and reports the first error.
func (m *Manager) CloseAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var firstErr error
	for name, client := range m.clients {
		if err := client.Close(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("close %s: %w", name, err)
		}
		delete(m.clients, name)
	}
	return firstErr
}
