// Copyright 2025 Edgaze
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ratelimit provides a Redis-backed sliding-window rate limiter.
//
// The limiter fails open: when Redis is unreachable or not configured, every
// request is allowed. A rate-limit outage must never take request handling
// down with it.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"edgaze/platform/shared/logger"
)

// Limiter enforces a per-key request budget over a sliding one-minute window.
type Limiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
	log    *logger.Logger
}

// New creates a limiter. A nil client disables limiting entirely (fail open).
func New(client *redis.Client, prefix string, limitPerWindow int, log *logger.Logger) *Limiter {
	if log == nil {
		log = logger.New("ratelimit")
	}
	return &Limiter{
		client: client,
		prefix: prefix,
		limit:  limitPerWindow,
		window: time.Minute,
		log:    log,
	}
}

// NewClient builds a Redis client from a redis:// URL and verifies the
// connection.
func NewClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

// Allow records one request for key and reports whether it is within the
// window budget. Redis failures allow the request.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	if l.client == nil || l.limit <= 0 {
		return true
	}

	now := time.Now()
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	pipe := l.client.Pipeline()

	// Drop timestamps that slid out of the window, count what remains,
	// record this request, and keep the key from living forever.
	minScore := now.Add(-l.window).Unix()
	pipe.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", minScore))
	pipe.ZCard(ctx, redisKey)
	pipe.ZAdd(ctx, redisKey, &redis.Z{
		Score:  float64(now.Unix()),
		Member: fmt.Sprintf("%d", now.UnixNano()),
	})
	pipe.Expire(ctx, redisKey, 2*l.window)

	cmds, err := pipe.Exec(ctx)
	if err != nil {
		l.log.Warn("", "Rate limit check failed, failing open", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
		return true
	}

	count := cmds[1].(*redis.IntCmd).Val()
	return count < int64(l.limit)
}

// Status reports how many requests a key has in the current window and when
// the window resets.
func (l *Limiter) Status(ctx context.Context, key string) (int, time.Time, error) {
	if l.client == nil {
		return 0, time.Time{}, fmt.Errorf("redis not configured")
	}

	now := time.Now()
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	minScore := now.Add(-l.window).Unix()

	count, err := l.client.ZCount(ctx, redisKey, fmt.Sprintf("%d", minScore), "+inf").Result()
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("failed to get rate limit status: %w", err)
	}

	resetTime := now.Truncate(l.window).Add(l.window)
	return int(count), resetTime, nil
}

// Flush clears all recorded requests for a key.
func (l *Limiter) Flush(ctx context.Context, key string) error {
	if l.client == nil {
		return fmt.Errorf("redis not configured")
	}
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)
	if err := l.client.Del(ctx, redisKey).Err(); err != nil {
		return fmt.Errorf("failed to flush rate limit data: %w", err)
	}
	return nil
}
