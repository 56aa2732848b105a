package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/agency/backend/internal/application/activity"
	"github.com/agency/backend/internal/domain/system"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultActivityKey is the list that holds the activity log
const DefaultActivityKey = "agency:activity"

// RedisActivityLog keeps the newest activity entries in a capped Redis list,
// newest at the head. Several processes can share one list.
type RedisActivityLog struct {
	client   *redis.Client
	key      string
	capacity int64
	logger   *zap.Logger
}

var (
	_ activity.Sink   = (*RedisActivityLog)(nil)
	_ activity.Source = (*RedisActivityLog)(nil)
)

// NewRedisActivityLog creates the sink. A non-positive capacity uses
// activity.DefaultCapacity.
func NewRedisActivityLog(client *redis.Client, key string, capacity int, logger *zap.Logger) *RedisActivityLog {
	if key == "" {
		key = DefaultActivityKey
	}
	if capacity <= 0 {
		capacity = activity.DefaultCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisActivityLog{client: client, key: key, capacity: int64(capacity), logger: logger}
}

// Name identifies the sink in logs
func (r *RedisActivityLog) Name() string {
	return "redis"
}

// Write pushes the entry and trims the list to capacity in one round trip
func (r *RedisActivityLog) Write(ctx context.Context, rec system.ActivityRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode activity %s: %w", rec.ID, err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, r.key, payload)
		pipe.LTrim(ctx, r.key, 0, r.capacity-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("push activity %s: %w", rec.ID, err)
	}
	return nil
}

// Recent returns up to n entries, newest first. n <= 0 returns the whole list.
// Entries that cannot be decoded are skipped.
func (r *RedisActivityLog) Recent(ctx context.Context, n int) ([]system.ActivityRecord, error) {
	stop := int64(-1)
	if n > 0 {
		stop = int64(n) - 1
	}
	raw, err := r.client.LRange(ctx, r.key, 0, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("read activity: %w", err)
	}

	out := make([]system.ActivityRecord, 0, len(raw))
	for _, item := range raw {
		var rec system.ActivityRecord
		if err := json.Unmarshal([]byte(item), &rec); err != nil {
			r.logger.Warn("skipping undecodable activity entry", zap.Error(err))
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

// Clear removes the whole list
func (r *RedisActivityLog) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
