package store

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const catalogKey = "ageband:catalog"

// RedisCache is a read-through cache in front of another Store. The catalog
// is static reference data, so a short TTL is purely to pick up the rare
// manual correction without a restart.
//
// Center status is deliberately never cached anywhere; this cache holds
// reference data only.
type RedisCache struct {
	next   Store
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(next Store, client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{next: next, client: client, ttl: ttl, logger: logger}
}

func (s *RedisCache) ListBands(ctx context.Context) ([]Row, error) {
	cached, err := s.client.Get(ctx, catalogKey).Bytes()
	if err == nil {
		var rows []Row
		if jsonErr := json.Unmarshal(cached, &rows); jsonErr == nil {
			return rows, nil
		}
		// Corrupt cache entry: fall through to the source and overwrite.
	} else if !errors.Is(err, redis.Nil) {
		// Cache unavailability degrades to the source, never to a failure.
		s.logger.WarnContext(ctx, "age band cache read failed", "error", err)
	}

	rows, err := s.next.ListBands(ctx)
	if err != nil {
		return nil, err
	}

	if payload, jsonErr := json.Marshal(rows); jsonErr == nil {
		if setErr := s.client.Set(ctx, catalogKey, payload, s.ttl).Err(); setErr != nil {
			s.logger.WarnContext(ctx, "age band cache write failed", "error", setErr)
		}
	}
	return rows, nil
}
