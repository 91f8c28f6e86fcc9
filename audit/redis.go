package audit

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultStreamName is the Redis stream audit events are appended to
const DefaultStreamName = "importiq:audit"

const publishTimeout = 5 * time.Second

// RedisPublisher appends audit events to a Redis stream with XADD. The
// consumer side (reporting, retention) runs elsewhere.
type RedisPublisher struct {
	client  *redis.Client
	stream  string
	enabled bool
}

// Config holds Redis connection settings for the audit stream
type Config struct {
	Addr     string
	Username string
	Password string
	DB       int
	Stream   string
}

// ConfigFromEnv builds a Config from AUDIT_REDIS_* environment variables.
// An empty address disables audit publishing.
func ConfigFromEnv() *Config {
	return &Config{
		Addr:     os.Getenv("AUDIT_REDIS_ADDR"),
		Username: os.Getenv("AUDIT_REDIS_USERNAME"),
		Password: os.Getenv("AUDIT_REDIS_PASSWORD"),
		Stream:   getEnvOrDefault("AUDIT_STREAM_NAME", DefaultStreamName),
	}
}

// NewRedisPublisher creates a publisher for the audit stream.
//
// Audit can be disabled by:
//   - Setting ENABLE_AUDIT=false
//   - Leaving the Redis address unset
//
// When disabled, all LogEvent calls are no-ops and the service keeps
// running.
func NewRedisPublisher(cfg *Config) *RedisPublisher {
	if !isAuditEnabled(cfg.Addr) {
		slog.Info("Audit publishing disabled",
			"reason", "ENABLE_AUDIT=false or AUDIT_REDIS_ADDR not configured")
		return &RedisPublisher{enabled: false}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("Audit Redis unreachable; audit publishing disabled", "error", err)
		_ = client.Close()
		return &RedisPublisher{enabled: false}
	}

	stream := cfg.Stream
	if stream == "" {
		stream = DefaultStreamName
	}

	slog.Info("Audit publisher initialized", "addr", cfg.Addr, "stream", stream)
	return &RedisPublisher{client: client, stream: stream, enabled: true}
}

// IsEnabled reports whether events will actually be published
func (p *RedisPublisher) IsEnabled() bool {
	return p.enabled
}

// LogEvent appends the event to the audit stream asynchronously
// (fire-and-forget). A background context is used so the publish survives
// request cancellation.
func (p *RedisPublisher) LogEvent(ctx context.Context, event *Event) {
	if !p.enabled || event == nil {
		return
	}

	go func() {
		bg, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		values := map[string]interface{}{
			"timestamp": event.Timestamp,
			"action":    event.Action,
			"status":    event.Status,
			"resource":  event.Resource,
		}
		if event.ActorID != nil {
			values["actorId"] = *event.ActorID
		}
		if event.ResourceID != nil {
			values["resourceId"] = *event.ResourceID
		}
		if event.RequestIP != "" {
			values["requestIp"] = event.RequestIP
		}

		err := p.client.XAdd(bg, &redis.XAddArgs{
			Stream: p.stream,
			Values: values,
		}).Err()
		if err != nil {
			slog.Warn("Failed to publish audit event", "error", err, "resource", event.Resource)
		}
	}()
}

// Close releases the Redis connection
func (p *RedisPublisher) Close() error {
	if p.client == nil {
		return nil
	}
	return p.client.Close()
}

func isAuditEnabled(addr string) bool {
	if strings.EqualFold(os.Getenv("ENABLE_AUDIT"), "false") {
		return false
	}
	return addr != ""
}

func getEnvOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
