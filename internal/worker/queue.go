package worker

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrQueueEmpty is returned by Pop when nothing arrived before the timeout.
var ErrQueueEmpty = errors.New("queue empty")

// Queue is a FIFO of JSON payloads.
type Queue interface {
	// Pop waits up to timeout for the next payload. A zero timeout does not block.
	Pop(ctx context.Context, timeout time.Duration) (string, error)
	// Requeue appends payloads to the tail.
	Requeue(ctx context.Context, payloads []string) error
}

// RedisQueue is a Queue over a Redis list.
type RedisQueue struct {
	rdb *redis.Client
	key string
}

// NewRedisQueue creates a queue over the list at key.
func NewRedisQueue(rdb *redis.Client, key string) *RedisQueue {
	return &RedisQueue{rdb: rdb, key: key}
}

func (q *RedisQueue) Pop(ctx context.Context, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		v, err := q.rdb.LPop(ctx, q.key).Result()
		if errors.Is(err, redis.Nil) {
			return "", ErrQueueEmpty
		}
		return v, err
	}

	// BLPop blocks for at least a second; Redis rejects shorter timeouts.
	result, err := q.rdb.BLPop(ctx, max(timeout, time.Second), q.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrQueueEmpty
	}
	if err != nil {
		return "", err
	}
	if len(result) < 2 {
		return "", ErrQueueEmpty
	}
	return result[1], nil
}

func (q *RedisQueue) Requeue(ctx context.Context, payloads []string) error {
	// Use a pipeline to push everything back quickly
	pipe := q.rdb.Pipeline()
	for _, p := range payloads {
		pipe.RPush(ctx, q.key, p)
	}
	_, err := pipe.Exec(ctx)
	return err
}
