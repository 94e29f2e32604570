// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"votebox/internal/models"
)

// testValkeyClient returns a Redis client for tests.
// Skips if Valkey is unavailable.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")
	password := os.Getenv("VALKEY_PASSWORD")

	client := redis.NewClient(&redis.Options{
		Addr:     host + ":" + port,
		Password: password,
		DB:       15, // Use DB 15 for tests.
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping integration test: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, statsKeyPrefix+"*").Result()
		client.Del(ctx, append(keys, statsGenKey)...)
		client.Close()
	})

	return client
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func TestConnectValkey(t *testing.T) {
	host := envOr("VALKEY_HOST", "localhost")
	port := envOr("VALKEY_PORT", "6379")

	client, err := ConnectValkey(context.Background(), host, port, os.Getenv("VALKEY_PASSWORD"))
	if err != nil {
		t.Skipf("skipping: Valkey not available: %v", err)
	}
	defer client.Close()

	ctx := context.Background()
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if pong != "PONG" {
		t.Errorf("expected PONG, got %q", pong)
	}
}

func TestConnectValkeyUnreachable(t *testing.T) {
	// Port 1 is reserved and never serves Valkey.
	_, err := ConnectValkey(context.Background(), "127.0.0.1", "1", "")
	if err == nil {
		t.Fatal("expected an error for an unreachable server")
	}
}

func sampleStats() *models.Stats {
	return &models.Stats{
		Top: []models.Item{{
			ID:        uuid.New(),
			Title:     "Rust",
			Category:  models.CategoryTools,
			Upvotes:   3,
			Downvotes: 1,
			Score:     2,
		}},
		Counts: models.StatsCounts{TotalItems: 1, TotalVotes: 4},
	}
}

func TestStatsCacheSetAndGet(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewStatsCache(client, time.Minute)
	ctx := context.Background()

	sc.Invalidate(ctx)

	// Miss.
	stats, gen, ok := sc.Get(ctx)
	if ok {
		t.Error("expected cache miss")
	}
	if stats != nil {
		t.Error("expected nil stats on miss")
	}
	if gen < 1 {
		t.Errorf("generation: got %d, want at least 1 after invalidation", gen)
	}

	want := sampleStats()
	sc.Set(ctx, gen, want)

	// Hit.
	stats, hitGen, ok := sc.Get(ctx)
	if !ok {
		t.Fatal("expected cache hit")
	}
	if hitGen != gen {
		t.Errorf("generation: got %d, want %d", hitGen, gen)
	}
	if stats.Counts != want.Counts {
		t.Errorf("counts: got %+v, want %+v", stats.Counts, want.Counts)
	}
	if len(stats.Top) != 1 || stats.Top[0].ID != want.Top[0].ID || stats.Top[0].Score != 2 {
		t.Errorf("top: got %+v", stats.Top)
	}
}

func TestStatsCacheInvalidate(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewStatsCache(client, time.Minute)
	ctx := context.Background()

	_, gen, _ := sc.Get(ctx)
	sc.Set(ctx, gen, sampleStats())
	if _, _, ok := sc.Get(ctx); !ok {
		t.Fatal("expected cache hit before invalidation")
	}

	sc.Invalidate(ctx)

	if _, _, ok := sc.Get(ctx); ok {
		t.Error("expected cache miss after invalidation")
	}
}

func TestStatsCacheSetAfterInvalidateIsIgnored(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewStatsCache(client, time.Minute)
	ctx := context.Background()

	// A reader misses and starts computing a snapshot.
	_, gen, ok := sc.Get(ctx)
	if ok {
		t.Fatal("expected cache miss")
	}

	// A vote commits and invalidates before the reader stores its result.
	sc.Invalidate(ctx)
	sc.Set(ctx, gen, sampleStats())

	if stats, _, ok := sc.Get(ctx); ok {
		t.Errorf("stale snapshot served after invalidation: %+v", stats.Counts)
	}
}

func TestStatsCacheNegativeGenerationIsNotStored(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewStatsCache(client, time.Minute)
	ctx := context.Background()

	sc.Set(ctx, -1, sampleStats())

	n, err := client.Exists(ctx, statsKey(-1)).Result()
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if n != 0 {
		t.Error("expected no snapshot stored for a negative generation")
	}
}

func TestStatsCacheExpires(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewStatsCache(client, time.Minute)
	ctx := context.Background()

	_, gen, _ := sc.Get(ctx)
	sc.Set(ctx, gen, sampleStats())

	ttl, err := client.TTL(ctx, statsKey(gen)).Result()
	if err != nil {
		t.Fatalf("TTL: %v", err)
	}
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("ttl: got %v, want within (0, 1m]", ttl)
	}
}

func TestStatsCacheCorruptEntryIsMiss(t *testing.T) {
	client := testValkeyClient(t)
	sc := NewStatsCache(client, time.Minute)
	ctx := context.Background()

	_, gen, _ := sc.Get(ctx)
	if err := client.Set(ctx, statsKey(gen), "not json", time.Minute).Err(); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, _, ok := sc.Get(ctx); ok {
		t.Error("expected corrupt entry to be treated as a miss")
	}
}

func TestNewStatsCacheDefaultTTL(t *testing.T) {
	// TTL = 0 should use default.
	sc := NewStatsCache(nil, 0)
	if sc.ttl != DefaultStatsTTL {
		t.Errorf("expected DefaultStatsTTL (%v), got %v", DefaultStatsTTL, sc.ttl)
	}
}
