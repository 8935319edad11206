package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"curricula/internal/domain"
)

// SetJSON stores v under key as a JSON document.
func SetJSON(ctx context.Context, c domain.Cache, key string, v interface{}, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache value %s: %w", key, err)
	}
	return c.Set(ctx, key, string(data), ttl)
}

// GetJSON decodes the document stored under key into dest. A missing key
// yields domain.ErrCacheMiss; an undecodable one yields domain.ErrCacheCorrupt
// and is left for the caller to drop.
func GetJSON(ctx context.Context, c domain.Cache, key string, dest interface{}) error {
	raw, err := c.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrCacheCorrupt, key, err)
	}
	return nil
}
