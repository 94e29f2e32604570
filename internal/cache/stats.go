// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"votebox/internal/models"
)

const (
	// statsGenKey is bumped on every invalidation. Snapshots are stored
	// under a key derived from the generation they were computed in.
	statsGenKey = "stats:gen"

	// statsKeyPrefix prefixes the per-generation snapshot keys.
	statsKeyPrefix = "stats:summary:"

	// DefaultStatsTTL bounds how stale a served snapshot can be if an
	// invalidation is lost.
	DefaultStatsTTL = 10 * time.Second
)

// StatsCache stores the stats snapshot in Valkey. Every method is
// best-effort: failures are logged and treated as a miss.
//
// A snapshot is only visible while the generation it was computed in is
// current, so a snapshot written after a concurrent invalidation is never
// served.
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStatsCache creates a stats cache backed by the given Valkey client.
func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	if ttl <= 0 {
		ttl = DefaultStatsTTL
	}
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(gen int64) string {
	return statsKeyPrefix + strconv.FormatInt(gen, 10)
}

// generation returns the current generation, or -1 if it cannot be read.
func (c *StatsCache) generation(ctx context.Context) int64 {
	gen, err := c.client.Get(ctx, statsGenKey).Int64()
	if err == redis.Nil {
		return 0
	}
	if err != nil {
		slog.Warn("stats cache generation error", "error", err)
		return -1
	}
	return gen
}

// Get returns the snapshot for the current generation. On a miss the
// returned generation is the one a freshly computed snapshot must be
// stored under.
func (c *StatsCache) Get(ctx context.Context) (*models.Stats, int64, bool) {
	gen := c.generation(ctx)
	if gen < 0 {
		return nil, gen, false
	}

	val, err := c.client.Get(ctx, statsKey(gen)).Bytes()
	if err == redis.Nil {
		return nil, gen, false
	}
	if err != nil {
		slog.Warn("stats cache get error", "error", err)
		return nil, gen, false
	}

	var stats models.Stats
	if err := json.Unmarshal(val, &stats); err != nil {
		slog.Warn("stats cache decode error", "error", err)
		return nil, gen, false
	}
	slog.Debug("stats cache hit", "generation", gen)
	return &stats, gen, true
}

// Set stores a snapshot computed in generation gen with the configured TTL.
// A negative generation is ignored.
func (c *StatsCache) Set(ctx context.Context, gen int64, stats *models.Stats) {
	if gen < 0 {
		return
	}
	val, err := json.Marshal(stats)
	if err != nil {
		slog.Warn("stats cache encode error", "error", err)
		return
	}
	if err := c.client.Set(ctx, statsKey(gen), val, c.ttl).Err(); err != nil {
		slog.Warn("stats cache set error", "error", err)
	}
}

// Invalidate advances the generation so every existing snapshot, including
// one still being computed, is ignored from now on.
func (c *StatsCache) Invalidate(ctx context.Context) {
	gen, err := c.client.Incr(ctx, statsGenKey).Result()
	if err != nil {
		slog.Warn("stats cache invalidate error", "error", err)
		return
	}
	slog.Debug("stats cache invalidated", "generation", gen)
}
