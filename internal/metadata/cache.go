package metadata

import (
	"context"
	"sync"
	"time"

	"github.com/viccon/sturdyc"
)

// DefaultTTL bounds how long gathered metadata is served from cache.
const DefaultTTL = time.Hour

// MemoryCache is a mutex guarded map with per entry expiry.
type MemoryCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[Key]memoryEntry
}

type memoryEntry struct {
	value   *Metadata
	expires time.Time
}

func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{ttl: ttl, now: time.Now, entries: map[Key]memoryEntry{}}
}

// WithClock replaces the time source.
func (c *MemoryCache) WithClock(now func() time.Time) *MemoryCache {
	if now != nil {
		c.now = now
	}
	return c
}

func (c *MemoryCache) Remember(ctx context.Context, key Key, produce Producer) (*Metadata, error) {
	c.mu.Lock()
	entry, ok := c.entries[key]
	c.mu.Unlock()
	if ok && c.now().Before(entry.expires) {
		return entry.value, nil
	}

	value, err := produce(ctx)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.entries[key] = memoryEntry{value: value, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return value, nil
}

func (c *MemoryCache) Forget(_ context.Context, key Key) error {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	return nil
}

// SturdyCache backs Cache with a sturdyc client. Concurrent misses on the
// same key share one producer call.
type SturdyCache struct {
	client *sturdyc.Client[*Metadata]
}

type SturdyConfig struct {
	Capacity           int
	Shards             int
	TTL                time.Duration
	EvictionPercentage int
}

func DefaultSturdyConfig() SturdyConfig {
	return SturdyConfig{
		Capacity:           10_000,
		Shards:             10,
		TTL:                DefaultTTL,
		EvictionPercentage: 10,
	}
}

func NewSturdyCache(cfg SturdyConfig) *SturdyCache {
	defaults := DefaultSturdyConfig()
	if cfg.Capacity <= 0 {
		cfg.Capacity = defaults.Capacity
	}
	if cfg.Shards <= 0 {
		cfg.Shards = defaults.Shards
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaults.TTL
	}
	if cfg.EvictionPercentage <= 0 {
		cfg.EvictionPercentage = defaults.EvictionPercentage
	}
	return &SturdyCache{
		client: sturdyc.New[*Metadata](cfg.Capacity, cfg.Shards, cfg.TTL, cfg.EvictionPercentage),
	}
}

func (c *SturdyCache) Remember(ctx context.Context, key Key, produce Producer) (*Metadata, error) {
	return c.client.GetOrFetch(ctx, key.String(), func(ctx context.Context) (*Metadata, error) {
		return produce(ctx)
	})
}

func (c *SturdyCache) Forget(_ context.Context, key Key) error {
	c.client.Delete(key.String())
	return nil
}
