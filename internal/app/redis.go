package app

import (
	"context"
	"fmt"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"stayhub/internal/config"
)

// NewRedisClient connects to Redis and verifies the connection. When a New
// Relic application is present, every command is reported as a datastore
// segment.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig, nrApp *newrelic.Application) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if nrApp != nil {
		client.AddHook(redisTelemetryHook{})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// redisTelemetryHook reports Redis commands to the New Relic transaction
// carried on the context, if any.
type redisTelemetryHook struct{}

func redisSegment(ctx context.Context, operation string) func() {
	txn := newrelic.FromContext(ctx)
	if txn == nil {
		return func() {}
	}
	segment := newrelic.DatastoreSegment{
		StartTime:  txn.StartSegmentNow(),
		Product:    newrelic.DatastoreRedis,
		Operation:  operation,
		Collection: "redis",
	}
	return segment.End
}

func (redisTelemetryHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (redisTelemetryHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		defer redisSegment(ctx, cmd.Name())()
		return next(ctx, cmd)
	}
}

func (redisTelemetryHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		defer redisSegment(ctx, "pipeline")()
		return next(ctx, cmds)
	}
}
