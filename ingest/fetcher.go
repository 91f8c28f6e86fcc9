package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/time/rate"
)

// userAgents is rotated across requests so feed providers see a browser mix.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/119.0",
}

// Fetcher downloads feed payloads with rate limiting and retry with
// exponential backoff. Retries cover transient failures only: 429 and
// 5xx responses plus transport errors. Other statuses fail immediately.
type Fetcher struct {
	client        *http.Client
	limiter       *rate.Limiter
	maxRetries    int
	backoffFactor float64
	maxDelay      time.Duration
}

// NewFetcher builds a Fetcher from the global ingestion config. When auth
// carries a token URL, requests use an OAuth2 client-credentials token source.
func NewFetcher(global GlobalConfig, auth AuthConfig) *Fetcher {
	client := &http.Client{Timeout: time.Duration(global.TimeoutSeconds) * time.Second}

	if auth.TokenURL != "" {
		oauthConfig := &clientcredentials.Config{
			ClientID:     auth.ClientID,
			ClientSecret: auth.ClientSecret,
			TokenURL:     auth.TokenURL,
			Scopes:       auth.Scopes,
		}
		client = oauthConfig.Client(context.Background())
		client.Timeout = time.Duration(global.TimeoutSeconds) * time.Second
	}

	perMinute := global.RateLimitPerMinute
	if perMinute < 1 {
		perMinute = 1
	}

	return &Fetcher{
		client:        client,
		limiter:       rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		maxRetries:    global.MaxRetries,
		backoffFactor: global.BackoffFactor,
		maxDelay:      time.Duration(global.MaxDelaySeconds) * time.Second,
	}
}

// Fetch downloads the body at url, retrying transient failures up to
// maxRetries times.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= f.maxRetries; attempt++ {
		if attempt > 0 {
			delay := f.backoffDelay(attempt)
			slog.Warn("Retrying feed fetch",
				"url", url,
				"attempt", attempt,
				"delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}

	return nil, fmt.Errorf("failed to fetch %s after %d attempts: %w", url, f.maxRetries+1, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) (body []byte, retryable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, true, err
		}
		return data, false, nil
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("transient HTTP %d from %s", resp.StatusCode, url)
	default:
		return nil, false, fmt.Errorf("HTTP %d from %s", resp.StatusCode, url)
	}
}

func (f *Fetcher) backoffDelay(attempt int) time.Duration {
	delay := time.Duration(math.Pow(f.backoffFactor, float64(attempt-1))) * time.Second
	if delay > f.maxDelay {
		delay = f.maxDelay
	}
	return delay
}
