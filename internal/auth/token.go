package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

var ErrTokenNotFound = errors.New("session token not found")

// TokenStore maps opaque session tokens to admin user ids.
type TokenStore interface {
	Put(ctx context.Context, token, adminID string) error
	Get(ctx context.Context, token string) (string, error)
	Del(ctx context.Context, token string) error
}

type RedisTokenStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisTokenStore(client *redis.Client, ttl time.Duration) *RedisTokenStore {
	return &RedisTokenStore{client: client, ttl: ttl}
}

func tokenKey(token string) string { return fmt.Sprintf("admin_session:%s", token) }

func (s *RedisTokenStore) Put(ctx context.Context, token, adminID string) error {
	return s.client.Set(ctx, tokenKey(token), adminID, s.ttl).Err()
}

func (s *RedisTokenStore) Get(ctx context.Context, token string) (string, error) {
	id, err := s.client.Get(ctx, tokenKey(token)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	return id, err
}

func (s *RedisTokenStore) Del(ctx context.Context, token string) error {
	return s.client.Del(ctx, tokenKey(token)).Err()
}

// MemoryTokenStore backs tests and single-node runs.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: make(map[string]string)}
}

func (s *MemoryTokenStore) Put(ctx context.Context, token, adminID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = adminID
	return nil
}

func (s *MemoryTokenStore) Get(ctx context.Context, token string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	if !ok {
		return "", ErrTokenNotFound
	}
	return id, nil
}

func (s *MemoryTokenStore) Del(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
