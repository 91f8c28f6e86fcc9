package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"
)

// testGlobalConfig keeps retries fast: delays are capped at zero.
func testGlobalConfig() GlobalConfig {
	return GlobalConfig{
		RateLimitPerMinute: 60000,
		MaxRetries:         3,
		BackoffFactor:      2,
		MaxDelaySeconds:    0,
		TimeoutSeconds:     5,
	}
}

func TestNewFetcherClampsZeroRateLimit(t *testing.T) {
	// A zero-value GlobalConfig must not divide by zero when sizing the
	// limiter interval.
	fetcher := NewFetcher(GlobalConfig{}, AuthConfig{})
	assert.NotNil(t, fetcher.limiter)
	assert.Equal(t, rate.Every(time.Minute), fetcher.limiter.Limit())
}

func TestFetchSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		w.Write([]byte(`[{"make":"Toyota"}]`))
	}))
	defer server.Close()

	fetcher := NewFetcher(testGlobalConfig(), AuthConfig{})
	body, err := fetcher.Fetch(context.Background(), server.URL)

	assert.NoError(t, err)
	assert.Equal(t, `[{"make":"Toyota"}]`, string(body))
}

func TestFetchRetriesOnServerError(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) <= 2 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	fetcher := NewFetcher(testGlobalConfig(), AuthConfig{})
	body, err := fetcher.Fetch(context.Background(), server.URL)

	assert.NoError(t, err)
	assert.Equal(t, `[]`, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&attempts))
}

func TestFetchRetriesOnRateLimit(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&attempts, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	fetcher := NewFetcher(testGlobalConfig(), AuthConfig{})
	_, err := fetcher.Fetch(context.Background(), server.URL)

	assert.NoError(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

func TestFetchExhaustsRetries(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	fetcher := NewFetcher(testGlobalConfig(), AuthConfig{})
	_, err := fetcher.Fetch(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "after 4 attempts")
	assert.Equal(t, int32(4), atomic.LoadInt32(&attempts), "initial attempt plus 3 retries")
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var attempts int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&attempts, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	fetcher := NewFetcher(testGlobalConfig(), AuthConfig{})
	_, err := fetcher.Fetch(context.Background(), server.URL)

	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&attempts), "4xx responses should not be retried")
}

func TestFetchRespectsContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewFetcher(testGlobalConfig(), AuthConfig{})
	_, err := fetcher.Fetch(ctx, server.URL)
	assert.Error(t, err)
}
