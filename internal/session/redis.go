package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
)

const keyPrefix = "workorders:batch:"

// RedisStore keeps batches as JSON values with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisStore(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger}
}

// OpenRedis parses a redis:// URL and verifies the server answers.
func OpenRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func key(sessionID string) string { return keyPrefix + sessionID }

func (r *RedisStore) Get(ctx context.Context, sessionID string) (pipeline.Batch, error) {
	raw, err := r.client.Get(ctx, key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return pipeline.Batch{}, common.ErrNotFound
	}
	if err != nil {
		return pipeline.Batch{}, fmt.Errorf("get session batch: %w", err)
	}
	var batch pipeline.Batch
	if err := json.Unmarshal(raw, &batch); err != nil {
		return pipeline.Batch{}, fmt.Errorf("decode session batch: %w", err)
	}
	return batch, nil
}

func (r *RedisStore) Replace(ctx context.Context, sessionID string, batch pipeline.Batch) error {
	raw, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("encode session batch: %w", err)
	}
	if err := r.client.Set(ctx, key(sessionID), raw, r.ttl).Err(); err != nil {
		return fmt.Errorf("store session batch: %w", err)
	}
	r.logger.Debug("session.redis.replaced", "session_id", sessionID, "batch_id", batch.ID, "bytes", len(raw))
	return nil
}

// UpdateRecords swaps the record list inside a WATCH transaction so a
// concurrent Replace for the same session is not overwritten.
func (r *RedisStore) UpdateRecords(ctx context.Context, sessionID string, records []entity.WorkOrder) (pipeline.Batch, error) {
	k := key(sessionID)
	var updated pipeline.Batch

	err := r.client.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, k).Bytes()
		if errors.Is(err, redis.Nil) {
			return common.ErrNotFound
		}
		if err != nil {
			return err
		}
		var batch pipeline.Batch
		if err := json.Unmarshal(raw, &batch); err != nil {
			return fmt.Errorf("decode session batch: %w", err)
		}
		updated = batch.WithRecords(records)
		out, err := json.Marshal(updated)
		if err != nil {
			return fmt.Errorf("encode session batch: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, out, r.ttl)
			return nil
		})
		return err
	}, k)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return pipeline.Batch{}, err
		}
		return pipeline.Batch{}, fmt.Errorf("update session records: %w", err)
	}
	return updated, nil
}

func (r *RedisStore) Delete(ctx context.Context, sessionID string) error {
	if err := r.client.Del(ctx, key(sessionID)).Err(); err != nil {
		return fmt.Errorf("delete session batch: %w", err)
	}
	return nil
}
