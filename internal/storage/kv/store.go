package kv

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const rateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
if current > tonumber(ARGV[2]) then
  return 0
end
return 1
`

const limiterTimeout = 250 * time.Millisecond

// Store keeps short-lived webhook state in redis. A nil *Store is a valid
// disabled store: claims are always granted and the limiter always allows.
type Store struct {
	client *redis.Client
	script *redis.Script
}

// New wraps an existing client. A nil client yields a nil store.
func New(client *redis.Client) *Store {
	if client == nil {
		return nil
	}
	return &Store{
		client: client,
		script: redis.NewScript(rateLimitScript),
	}
}

// Open connects to url. An empty url disables the store; an unreachable
// server is logged and disables it as well.
func Open(ctx context.Context, url string, logger *slog.Logger) (*Store, error) {
	if url == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("redis ping failed, webhook dedup disabled", slog.String("error", err.Error()))
		_ = client.Close()
		return nil, nil
	}
	return New(client), nil
}

// Claim records key for ttl unless it already exists.
func (s *Store) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if s == nil || s.client == nil {
		return true, nil
	}
	ok, err := s.client.SetNX(ctx, key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim %s: %w", key, err)
	}
	return ok, nil
}

func (s *Store) Release(ctx context.Context, key string) error {
	if s == nil || s.client == nil {
		return nil
	}
	if err := s.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("release %s: %w", key, err)
	}
	return nil
}

// Allow counts a hit against key in a fixed window. Redis errors allow the request.
func (s *Store) Allow(ctx context.Context, key string, limit int, window time.Duration) bool {
	if s == nil || s.client == nil {
		return true
	}
	if key == "" || limit <= 0 || window <= 0 {
		return true
	}
	ttl := window.Milliseconds()
	if ttl <= 0 {
		ttl = 1
	}
	ctx, cancel := context.WithTimeout(ctx, limiterTimeout)
	defer cancel()
	allowed, err := s.script.Run(ctx, s.client, []string{key}, ttl, limit).Int64()
	if err != nil {
		return true
	}
	return allowed == 1
}

// Close releases the client.
func (s *Store) Close() error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Close()
}
