package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/ftwtie/pdfmerger/internal/metrics"
)

// LogSender writes events to a zerolog logger.
type LogSender struct {
	Logger zerolog.Logger
}

func (s LogSender) Send(_ context.Context, ev Event) error {
	s.Logger.Info().Str("event", ev.Name).Fields(ev.Properties).Time("at", ev.At).Msg("telemetry")
	return nil
}

// MetricsSender counts events by name.
type MetricsSender struct{}

func (MetricsSender) Send(_ context.Context, ev Event) error {
	metrics.IncTelemetryEvent(ev.Name)
	return nil
}

// RedisStream appends events to a Redis stream as {event, at, props}.
type RedisStream struct {
	client *redis.Client
	stream string
	maxLen int64
}

// NewRedisStream connects to redisURL and checks the connection.
func NewRedisStream(redisURL, stream string) (*RedisStream, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opt)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewRedisStreamClient(c, stream), nil
}

// NewRedisStreamClient wraps an existing client.
func NewRedisStreamClient(c *redis.Client, stream string) *RedisStream {
	if stream == "" {
		stream = "events:pdfmerger"
	}
	return &RedisStream{client: c, stream: stream, maxLen: 10000}
}

func (s *RedisStream) Send(ctx context.Context, ev Event) error {
	props, err := json.Marshal(ev.Properties)
	if err != nil {
		return fmt.Errorf("encode properties: %w", err)
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		MaxLen: s.maxLen,
		Approx: true,
		Values: map[string]any{
			"event": ev.Name,
			"at":    ev.At.Format(time.RFC3339Nano),
			"props": string(props),
		},
	}).Err()
}

// Ping checks redis connectivity.
func (s *RedisStream) Ping(ctx context.Context) error { return s.client.Ping(ctx).Err() }

func (s *RedisStream) Close() error { return s.client.Close() }
