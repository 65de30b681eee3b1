// tokenstore/redisstore/redisstore.go
// Package redisstore keeps tokens in Redis so several machines can share one login.
package redisstore

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Store reads and writes plain string keys, optionally namespaced by a prefix.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
}

// New returns a Store using rdb. When prefix is non-empty keys are stored as "<prefix>:<key>".
func New(rdb redis.UniversalClient, prefix string) *Store {
	return &Store{rdb: rdb, prefix: prefix}
}

func (s *Store) key(k string) string {
	if s.prefix == "" {
		return k
	}
	return s.prefix + ":" + k
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	value, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return value, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.rdb.Set(ctx, s.key(key), value, 0).Err()
}

func (s *Store) Clear(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, s.key(key)).Err()
}
