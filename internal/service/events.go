package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stemsi/unierp-backend/internal/config"
	"github.com/stemsi/unierp-backend/internal/model"
)

// EventPublisher fans enrollment events out to the audit queue and live subscribers.
type EventPublisher interface {
	Publish(ctx context.Context, ev model.EnrollmentEvent) error
}

// RedisEventPublisher queues events for the audit worker and publishes them
// on the student's channel in one pipeline.
type RedisEventPublisher struct {
	rdb *redis.Client
}

// NewRedisEventPublisher creates a new RedisEventPublisher.
func NewRedisEventPublisher(rdb *redis.Client) *RedisEventPublisher {
	return &RedisEventPublisher{rdb: rdb}
}

// Publish implements EventPublisher.
func (p *RedisEventPublisher) Publish(ctx context.Context, ev model.EnrollmentEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	pipe := p.rdb.Pipeline()
	pipe.RPush(ctx, config.WorkerKey.EnrollmentEventsQueue, data)
	pipe.Publish(ctx, config.CacheKey.StudentEnrollmentChannel(ev.StudentID.String()), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	return nil
}
