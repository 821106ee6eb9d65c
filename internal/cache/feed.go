// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// feed.go provides a Valkey-backed cache for public feed responses.
// The public feed and individual approved posts are the only hot read
// paths; their JSON payloads are cached so repeat requests skip the DB.
// Any transition in or out of approved invalidates the affected keys.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// feedKeyPrefix is the Valkey key prefix for cached feed payloads.
	feedKeyPrefix = "feed:"

	// DefaultFeedTTL is how long a cached payload stays fresh.
	DefaultFeedTTL = 5 * time.Minute
)

// FeedCache manages cached public feed payloads in Valkey.
type FeedCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFeedCache creates a feed cache backed by the given Valkey client.
func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	if ttl == 0 {
		ttl = DefaultFeedTTL
	}
	return &FeedCache{client: client, ttl: ttl}
}

// Get retrieves a cached payload. Returns false on miss or cache error —
// callers fall through to the database either way.
func (fc *FeedCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := fc.client.Get(ctx, feedKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("feed cache get error", "key", key, "error", err)
		return nil, false
	}
	slog.Debug("feed cache hit", "key", key)
	return val, true
}

// Set stores a payload for a key with the configured TTL.
func (fc *FeedCache) Set(ctx context.Context, key string, payload []byte) {
	if err := fc.client.Set(ctx, feedKeyPrefix+key, payload, fc.ttl).Err(); err != nil {
		slog.Warn("feed cache set error", "key", key, "error", err)
	}
}

// Invalidate removes a single cached key.
func (fc *FeedCache) Invalidate(ctx context.Context, key string) {
	if err := fc.client.Del(ctx, feedKeyPrefix+key).Err(); err != nil {
		slog.Warn("feed cache invalidate error", "key", key, "error", err)
	}
	slog.Debug("feed cache invalidated", "key", key)
}

// InvalidatePost removes the feed listing and the post's own entry.
// Called when a post enters or leaves approved status.
func (fc *FeedCache) InvalidatePost(ctx context.Context, slug string) {
	fc.Invalidate(ctx, FeedKey())
	fc.Invalidate(ctx, SlugKey(slug))
}

// FeedKey returns the cache key for the public feed listing.
func FeedKey() string {
	return "_feed"
}

// SlugKey returns the cache key for a single post by slug.
func SlugKey(slug string) string {
	return "post:" + slug
}
