// Package cache stores computed analytics responses in Redis.
//
// The cache is optional: a nil *ResponseCache, a nil client or a zero TTL
// all turn every lookup into a miss and every store into a no-op.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "analytics:resp:"

// ResponseCache is a JSON-encoding TTL cache over Redis.
type ResponseCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New creates a response cache.
func New(client *redis.Client, ttl time.Duration) *ResponseCache {
	return &ResponseCache{client: client, ttl: ttl}
}

// Enabled reports whether lookups can ever hit.
func (c *ResponseCache) Enabled() bool {
	return c != nil && c.client != nil && c.ttl > 0
}

// Key builds a fixed-length cache key from its parts.
func Key(namespace string, parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return keyPrefix + namespace + ":" + hex.EncodeToString(sum[:16])
}

// Get decodes the cached value for key into dst. It reports false on a miss.
func (c *ResponseCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("cache decode %s: %w", key, err)
	}
	return true, nil
}

// Set stores v under key for the configured TTL.
func (c *ResponseCache) Set(ctx context.Context, key string, v any) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("cache encode %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}
