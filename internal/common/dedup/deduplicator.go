package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduplicator remembers which search requests are already being
// answered, so a request pushed twice is only crawled once
type Deduplicator struct {
	client     *redis.Client
	prefix     string
	defaultTTL time.Duration
}

// NewDeduplicator creates a new Redis-based deduplicator
func NewDeduplicator(client *redis.Client, prefix string, defaultTTL time.Duration) *Deduplicator {
	if prefix == "" {
		prefix = "dedup"
	}
	if defaultTTL == 0 {
		defaultTTL = time.Hour
	}
	return &Deduplicator{
		client:     client,
		prefix:     prefix,
		defaultTTL: defaultTTL,
	}
}

// Claim returns true the first time requestID is seen within the TTL
func (d *Deduplicator) Claim(ctx context.Context, requestID string) (bool, error) {
	ok, err := d.client.SetNX(ctx, d.makeKey(requestID), time.Now().Unix(), d.defaultTTL).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return ok, nil
}

// Release forgets a claim so a failed request can be retried
func (d *Deduplicator) Release(ctx context.Context, requestID string) error {
	if err := d.client.Del(ctx, d.makeKey(requestID)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (d *Deduplicator) makeKey(id string) string {
	return fmt.Sprintf("%s:%s", d.prefix, id)
}
