package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lystzs/family-asset-manager/pkg/config"
	"github.com/lystzs/family-asset-manager/pkg/logger"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:      "development",
		LogLevel: "error",
		Backend: config.BackendConfig{
			Timeout: 5 * time.Second,
		},
	}
}

func TestNew(t *testing.T) {
	cfg := testConfig()
	client := New(cfg, logger.Nop())

	require.NotNil(t, client)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
	assert.Equal(t, 2, client.retryConfig.MaxRetries)
	assert.Nil(t, client.limiter, "rate limit 0 means no local limiter")
}

func TestNewWithRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Backend.RateLimit = 10

	client := New(cfg, logger.Nop())
	require.NotNil(t, client.limiter)
	assert.Equal(t, 10, client.limiter.Burst())
}

func TestWithRetryAndDisable(t *testing.T) {
	client := New(testConfig(), logger.Nop()).WithRetry(5, 10*time.Millisecond)
	assert.Equal(t, 5, client.retryConfig.MaxRetries)
	assert.Equal(t, 10*time.Millisecond, client.retryConfig.InitialDelay)

	client.DisableRetry()
	assert.False(t, client.retryConfig.Enabled)
}

func TestMethods(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"method":%q,"content_type":%q,"body_len":%d}`, r.Method, r.Header.Get("Content-Type"), len(body))
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		call func() (*http.Response, error)
		want string
	}{
		{"get", func() (*http.Response, error) { return client.Get(ctx, server.URL) }, `"method":"GET","content_type":""`},
		{"post", func() (*http.Response, error) { return client.PostJSON(ctx, server.URL, map[string]int{"qty": 1}) }, `"method":"POST","content_type":"application/json"`},
		{"post empty", func() (*http.Response, error) { return client.PostJSON(ctx, server.URL, nil) }, `"method":"POST","content_type":"","body_len":0`},
		{"put", func() (*http.Response, error) { return client.PutJSON(ctx, server.URL, map[string]string{"alias": "x"}) }, `"method":"PUT","content_type":"application/json"`},
		{"delete", func() (*http.Response, error) { return client.Delete(ctx, server.URL) }, `"method":"DELETE"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := tt.call()
			require.NoError(t, err)
			defer resp.Body.Close()

			body, _ := io.ReadAll(resp.Body)
			assert.Contains(t, string(body), tt.want)
		})
	}
}

func TestRetryOn5xx(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.Get(context.Background(), server.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestPostIsNeverRetried(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop()).WithRetry(3, 10*time.Millisecond)

	resp, err := client.PostJSON(context.Background(), server.URL, map[string]int{"quantity": 10})
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts))
}

func TestRetryStopsOnContextCancel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client := New(testConfig(), logger.Nop()).WithRetry(5, time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.Get(ctx, server.URL)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		statusCode int
		want       bool
	}{
		{200, false},
		{400, false},
		{404, false},
		{422, false},
		{429, true},
		{500, true},
		{502, true},
		{503, true},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("status_%d", tt.statusCode), func(t *testing.T) {
			if got := IsRetryableError(tt.statusCode); got != tt.want {
				t.Errorf("IsRetryableError(%d) = %v, want %v", tt.statusCode, got, tt.want)
			}
		})
	}
}
