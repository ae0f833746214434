package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/gomodule/redigo/redis"
	"go.uber.org/zap"
)

const broadcastOutboxKey = "broadcast_outbox"

// BroadcastOutboxRepository holds event ids awaiting dispatch in a sorted set
// scored by due time, so one range query per tick returns everything due.
type BroadcastOutboxRepository struct {
	pool   *redis.Pool
	logger *zap.SugaredLogger
}

func NewBroadcastOutboxRepository(pool *redis.Pool, logger *zap.SugaredLogger) *BroadcastOutboxRepository {
	return &BroadcastOutboxRepository{pool: pool, logger: logger}
}

func (r *BroadcastOutboxRepository) Enqueue(ctx context.Context, eventID int64, due time.Time) error {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return fmt.Errorf("BroadcastOutboxRepository.Enqueue: %w", err)
	}
	defer conn.Close()

	if _, err := conn.Do("ZADD", broadcastOutboxKey, due.Unix(), eventID); err != nil {
		return fmt.Errorf("BroadcastOutboxRepository.Enqueue: %w", err)
	}
	return nil
}

// PopDue atomically takes every event due at or before now. A popped id that
// later fails to dispatch is re-enqueued by the caller, not kept here.
func (r *BroadcastOutboxRepository) PopDue(ctx context.Context, now time.Time) ([]int64, error) {
	conn, err := r.pool.GetContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("BroadcastOutboxRepository.PopDue: %w", err)
	}
	defer conn.Close()

	if err := conn.Send("MULTI"); err != nil {
		return nil, fmt.Errorf("BroadcastOutboxRepository.PopDue: %w", err)
	}
	if err := conn.Send("ZRANGEBYSCORE", broadcastOutboxKey, "-inf", now.Unix()); err != nil {
		return nil, fmt.Errorf("BroadcastOutboxRepository.PopDue: %w", err)
	}
	if err := conn.Send("ZREMRANGEBYSCORE", broadcastOutboxKey, "-inf", now.Unix()); err != nil {
		return nil, fmt.Errorf("BroadcastOutboxRepository.PopDue: %w", err)
	}

	replies, err := redis.Values(conn.Do("EXEC"))
	if err != nil {
		return nil, fmt.Errorf("BroadcastOutboxRepository.PopDue: %w", err)
	}
	if len(replies) != 2 {
		return nil, fmt.Errorf("BroadcastOutboxRepository.PopDue: unexpected reply count %d", len(replies))
	}

	ids, err := redis.Int64s(replies[0], nil)
	if err != nil {
		return nil, fmt.Errorf("BroadcastOutboxRepository.PopDue: %w", err)
	}
	return ids, nil
}
