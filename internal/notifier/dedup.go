package notifier

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Deduper suppresses repeat alerts for the same product URL within a TTL
// window, backed by redis SET NX.
type Deduper struct {
	client *redis.Client
	ttl    time.Duration
}

func NewDeduper(client *redis.Client, ttl time.Duration) *Deduper {
	return &Deduper{client: client, ttl: ttl}
}

// FirstAlert claims the alert slot for url. It returns true when no alert was
// sent for this url within the TTL window; the claim itself starts a new
// window.
func (d *Deduper) FirstAlert(ctx context.Context, url string) (bool, error) {
	ok, err := d.client.SetNX(ctx, alertKey(url), "1", d.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim alert key: %w", err)
	}
	return ok, nil
}

func alertKey(url string) string {
	sum := sha256.Sum256([]byte(url))
	return "alert:" + hex.EncodeToString(sum[:8])
}
