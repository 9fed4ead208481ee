// Package redis provides a Redis-backed host store.
package redis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/yndnr/webstash-go/pkg/entry"
)

const scanCount = 256

// Store keeps one namespace as a single Redis hash named
// "webstash:<namespace>". Key indexes follow sorted order; Range follows
// HSCAN order.
type Store struct {
	redis redis.UniversalClient
	hash  string
	owned bool
	extra []io.Closer
}

// Option configures the Store.
type Option func(*Store)

// WithOwnedClient makes Close close the underlying client.
func WithOwnedClient() Option {
	return func(s *Store) {
		s.owned = true
	}
}

// WithCloser closes c together with the store.
func WithCloser(c io.Closer) Option {
	return func(s *Store) {
		s.extra = append(s.extra, c)
	}
}

// New creates a store on redisClient.
func New(redisClient redis.UniversalClient, namespace string, opts ...Option) *Store {
	if namespace == "" {
		namespace = "default"
	}
	s := &Store{
		redis: redisClient,
		hash:  "webstash:" + namespace,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetItem returns the value stored under key.
func (s *Store) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := s.redis.HGet(ctx, s.hash, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis: hget: %w", err)
	}
	return v, true, nil
}

// SetItem stores key. A server out of memory reports entry.ErrQuotaExceeded.
func (s *Store) SetItem(ctx context.Context, key, value string) error {
	if err := s.redis.HSet(ctx, s.hash, key, value).Err(); err != nil {
		if isOOM(err) {
			return fmt.Errorf("redis: %w: %v", entry.ErrQuotaExceeded, err)
		}
		return fmt.Errorf("redis: hset: %w", err)
	}
	return nil
}

// RemoveItem deletes key.
func (s *Store) RemoveItem(ctx context.Context, key string) error {
	if err := s.redis.HDel(ctx, s.hash, key).Err(); err != nil {
		return fmt.Errorf("redis: hdel: %w", err)
	}
	return nil
}

// Len returns the number of fields in the hash.
func (s *Store) Len(ctx context.Context) (int, error) {
	n, err := s.redis.HLen(ctx, s.hash).Result()
	if err != nil {
		return 0, fmt.Errorf("redis: hlen: %w", err)
	}
	return int(n), nil
}

// Key returns the index-th key in sorted order.
func (s *Store) Key(ctx context.Context, index int) (string, bool, error) {
	if index < 0 {
		return "", false, nil
	}
	keys, err := s.redis.HKeys(ctx, s.hash).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis: hkeys: %w", err)
	}
	if index >= len(keys) {
		return "", false, nil
	}
	sort.Strings(keys)
	return keys[index], true, nil
}

// Range walks the hash with HSCAN until fn returns false. Entries written
// during the walk may or may not be visited.
func (s *Store) Range(ctx context.Context, fn func(key, value string) bool) error {
	var cursor uint64
	for {
		fields, next, err := s.redis.HScan(ctx, s.hash, cursor, "*", scanCount).Result()
		if err != nil {
			return fmt.Errorf("redis: hscan: %w", err)
		}
		for i := 0; i+1 < len(fields); i += 2 {
			if !fn(fields[i], fields[i+1]) {
				return nil
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}

// Ping checks that the server is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}

// Close closes the client if the store owns it, then the WithCloser
// resources.
func (s *Store) Close() error {
	var errs []error
	if s.owned {
		errs = append(errs, s.redis.Close())
	}
	for _, c := range s.extra {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func isOOM(err error) bool {
	return strings.HasPrefix(err.Error(), "OOM")
}

var (
	_ entry.Store  = (*Store)(nil)
	_ entry.Ranger = (*Store)(nil)
)
