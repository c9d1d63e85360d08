package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// DailyTTL is the default lifetime of per-day derived state. Entries carry
// the day in their key, so this only has to outlive the day they belong to.
const DailyTTL = 24 * time.Hour

// Store is the cache facility over Redis: JSON values, TTLs, explicit
// invalidation. It is a disposable derived view; Postgres stays the source of
// truth, so a cache bug costs latency, never correctness.
type Store struct {
	client *redis.Client
}

func NewStore(addr, password string, db int) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

// Get unmarshals the cached value into dest, or returns ErrMiss.
func (s *Store) Get(ctx context.Context, key Key, dest any) error {
	raw, err := s.client.Get(ctx, string(key)).Bytes()
	if err == redis.Nil {
		return ErrMiss
	}
	if err != nil {
		return fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("cache decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) Set(ctx context.Context, key Key, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := s.client.Set(ctx, string(key), raw, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Forget drops entries. Missing keys are not an error.
func (s *Store) Forget(ctx context.Context, keys ...Key) error {
	if len(keys) == 0 {
		return nil
	}
	raw := make([]string, len(keys))
	for i, k := range keys {
		raw[i] = string(k)
	}
	if err := s.client.Del(ctx, raw...).Err(); err != nil {
		return fmt.Errorf("cache forget: %w", err)
	}
	return nil
}

// Remember returns the cached value for key or computes, stores, and returns
// it. There is no lock around the compute: concurrent misses may race to
// populate and the last writer wins, which is fine because the computation is
// idempotent for a given day.
func (s *Store) Remember(ctx context.Context, key Key, ttl time.Duration, dest any, compute func() (any, error)) error {
	if err := s.Get(ctx, key, dest); err == nil {
		return nil
	} else if err != ErrMiss {
		return err
	}

	value, err := compute()
	if err != nil {
		return err
	}
	if err := s.Set(ctx, key, value, ttl); err != nil {
		return err
	}
	// Round-trip through JSON so dest is filled the same way a hit would.
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	return json.Unmarshal(raw, dest)
}
