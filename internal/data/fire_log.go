package data

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/target/taskd/internal/domain/model"
)

// fireLogKey is the Redis list holding recent execution records,
// most recent first.
const fireLogKey = "taskd:fires"

// FireLogConfig bounds the Redis-backed execution history.
type FireLogConfig struct {
	Key  string
	Size int
	TTL  time.Duration
}

// FireLogRepo keeps a capped, most-recent-first list of task executions in
// Redis. It backs the operator-facing "what ran lately" view; the scheduler
// treats writes as best effort.
type FireLogRepo struct {
	client redis.UniversalClient
	key    string
	size   int64
	ttl    time.Duration
}

// NewFireLogRepo creates a FireLogRepo with the given Redis client.
func NewFireLogRepo(client redis.UniversalClient, cfg FireLogConfig) *FireLogRepo {
	key := cfg.Key
	if key == "" {
		key = fireLogKey
	}
	size := int64(cfg.Size)
	if size <= 0 {
		size = 100
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &FireLogRepo{client: client, key: key, size: size, ttl: ttl}
}

// Record prepends one execution record and trims the list to its cap.
func (r *FireLogRepo) Record(ctx context.Context, fire model.FireRecord) error {
	if fire.ExecutionID == "" {
		return errors.New("execution id cannot be empty")
	}

	payload, err := json.Marshal(fire)
	if err != nil {
		return fmt.Errorf("encode fire record: %w", err)
	}

	if err := r.client.LPush(ctx, r.key, payload).Err(); err != nil {
		return fmt.Errorf("redis lpush: %w", err)
	}
	if err := r.client.LTrim(ctx, r.key, 0, r.size-1).Err(); err != nil {
		return fmt.Errorf("redis ltrim: %w", err)
	}
	// The whole log expires together; any write refreshes it.
	if err := r.client.Expire(ctx, r.key, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}

	return nil
}

// Recent returns up to limit records, most recent first. A non-positive
// limit returns the full retained window.
func (r *FireLogRepo) Recent(ctx context.Context, limit int) ([]model.FireRecord, error) {
	stop := r.size - 1
	if limit > 0 && int64(limit) < r.size {
		stop = int64(limit) - 1
	}

	entries, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis lrange: %w", err)
	}

	records := make([]model.FireRecord, 0, len(entries))
	for _, entry := range entries {
		var rec model.FireRecord
		if err := json.Unmarshal([]byte(entry), &rec); err != nil {
			// Malformed entries are dropped rather than failing the read.
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

// Health checks the health of the Redis connection.
func (r *FireLogRepo) Health(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
