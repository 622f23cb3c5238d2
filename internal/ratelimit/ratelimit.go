// Package ratelimit provides a fixed-window request limiter for the
// rate-limited POST endpoints. A redis-backed implementation is used when a
// redis address is configured (so limits hold across replicas); otherwise an
// in-process limiter covers the single-instance case.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Limiter reports whether the caller identified by key may proceed within the
// current window.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// ─── In-process limiter ───────────────────────────────────────────────────────

type window struct {
	count   int
	resetAt time.Time
}

// Memory is a fixed-window limiter backed by a map. Expired windows are pruned
// lazily on access.
type Memory struct {
	max     int
	period  time.Duration
	mu      sync.Mutex
	windows map[string]*window
}

func NewMemory(max int, period time.Duration) *Memory {
	return &Memory{
		max:     max,
		period:  period,
		windows: make(map[string]*window),
	}
}

func (m *Memory) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	w, ok := m.windows[key]
	if !ok || now.After(w.resetAt) {
		m.windows[key] = &window{count: 1, resetAt: now.Add(m.period)}
		return true, nil
	}
	w.count++
	return w.count <= m.max, nil
}

// ─── Redis limiter ────────────────────────────────────────────────────────────

// Redis is a fixed-window limiter using INCR with an expiry set on the first
// hit of each window.
type Redis struct {
	client *redis.Client
	max    int
	period time.Duration
}

func NewRedis(client *redis.Client, max int, period time.Duration) *Redis {
	return &Redis{client: client, max: max, period: period}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Incr(ctx, "ratelimit:"+key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, "ratelimit:"+key, r.period).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(r.max), nil
}
