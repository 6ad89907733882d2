package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/proxyscope/pkg/llm"
)

// flakyProvider 前 failures 次调用返回错误，之后成功。
type flakyProvider struct {
	failures int
	calls    int
	err      error
}

func (f *flakyProvider) Name() string { return "flaky" }

func (f *flakyProvider) fail() error {
	f.calls++
	if f.calls <= f.failures {
		return f.err
	}
	return nil
}

func (f *flakyProvider) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	out := make([][]float32, len(texts))
	for i := range out {
		out[i] = []float32{1.0}
	}
	return out, nil
}

func (f *flakyProvider) EmbedSingle(_ context.Context, _ string) ([]float32, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []float32{1.0}, nil
}

func (f *flakyProvider) Chat(_ context.Context, _ []llm.Message) (string, error) {
	if err := f.fail(); err != nil {
		return "", err
	}
	return "ok", nil
}

func (f *flakyProvider) Generate(_ context.Context, _ string, _ string) (string, error) {
	if err := f.fail(); err != nil {
		return "", err
	}
	return "ok", nil
}

func (f *flakyProvider) GenerateJSON(_ context.Context, _ string, _ string) ([]byte, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []byte(`{"ok":true}`), nil
}

func (f *flakyProvider) ChatJSON(_ context.Context, _ []llm.Message) ([]byte, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return []byte(`{"ok":true}`), nil
}

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestResilientEmbeddingProvider_RetriesTransientError(t *testing.T) {
	underlying := &flakyProvider{failures: 2, err: fmt.Errorf("server error, status code 503")}
	rp := NewResilientEmbeddingProvider(underlying, fastRetry(), nil)

	embedding, err := rp.EmbedSingle(context.Background(), "text")
	require.NoError(t, err)
	assert.Equal(t, []float32{1.0}, embedding)
	assert.Equal(t, 3, underlying.calls)
}

func TestResilientEmbeddingProvider_NoRetryOnContextCancel(t *testing.T) {
	underlying := &flakyProvider{failures: 10, err: context.Canceled}
	rp := NewResilientEmbeddingProvider(underlying, fastRetry(), nil)

	_, err := rp.EmbedSingle(context.Background(), "text")
	require.Error(t, err)
	// 不可重试的错误只尝试一次
	assert.Equal(t, 1, underlying.calls)
}

func TestResilientChatProvider_GenerateJSON(t *testing.T) {
	underlying := &flakyProvider{failures: 1, err: fmt.Errorf("request failed with status code 429: rate limit")}
	rp := NewResilientChatProvider(underlying, fastRetry(), nil)

	raw, err := rp.GenerateJSON(context.Background(), "prompt", "system")
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(raw))
	assert.Equal(t, 2, underlying.calls)
}

func TestResilientChatProvider_Name(t *testing.T) {
	rp := NewResilientChatProvider(&flakyProvider{}, nil, nil)
	assert.Equal(t, "flaky-resilient", rp.Name())
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"nil", nil, false},
		{"circuit breaker open", ErrCircuitBreakerOpen, false},
		{"context canceled", context.Canceled, false},
		{"context deadline", context.DeadlineExceeded, false},
		{"dns error", &net.DNSError{Err: "no such host", Name: "example.com"}, true},
		{"op error", &net.OpError{Op: "dial", Err: errors.New("connection refused")}, true},
		{"http 500", fmt.Errorf("server error, status code 502"), true},
		{"http 429", fmt.Errorf("request failed with status code 429: too many requests"), true},
		{"http 408", fmt.Errorf("request failed with status code 408"), true},
		{"http 503", fmt.Errorf("service unavailable"), true},
		{"eof", fmt.Errorf("unexpected EOF"), true},
		{"connection reset", fmt.Errorf("read tcp: connection reset by peer"), true},
		{"http 400", fmt.Errorf("request failed with status code 400: bad request"), false},
		{"plain error", errors.New("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.retryable, IsRetryableError(tt.err))
		})
	}
}
