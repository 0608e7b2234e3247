package kv

import (
	"context"
	"errors"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

const (
	loadTimeout  = 5 * time.Second
	cacheTimeout = time.Second
	fillSlots    = 256
)

// fillSlot orders cache fills against invalidations for the keys hashing to it.
// gen moves on every write, so a fill carrying a value read before the write
// is dropped.
type fillSlot struct {
	mu  sync.Mutex
	gen uint64
}

// Cached puts a cache tier in front of a primary store. Reads go cache first
// and fall back to the primary; concurrent misses for one key share a single
// primary read. Writes go to the primary and invalidate the cache entry.
type Cached struct {
	primary Store
	cache   Store
	log     *slog.Logger
	sfg     singleflight.Group
	slots   [fillSlots]fillSlot
}

func NewCached(primary, cache Store, log *slog.Logger) *Cached {
	return &Cached{
		primary: primary,
		cache:   cache,
		log:     log,
	}
}

func (c *Cached) slot(key string) *fillSlot {
	h := fnv.New32a()
	_, _ = h.Write([]byte(key))
	return &c.slots[h.Sum32()%fillSlots]
}

func (c *Cached) Get(ctx context.Context, key string) ([]byte, error) {
	v, err, _ := c.sfg.Do(key, func() (interface{}, error) {
		// shared by every waiter, so no single caller may cancel it
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		data, err := c.cache.Get(ctx, key)
		if err == nil {
			return data, nil
		}
		if !errors.Is(err, ErrNotFound) {
			c.log.WarnContext(ctx, "cache get error", "key", key, "error", err)
		}

		s := c.slot(key)
		s.mu.Lock()
		gen := s.gen
		s.mu.Unlock()

		data, err = c.primary.Get(ctx, key)
		if err != nil {
			return nil, err
		}

		c.fill(ctx, s, gen, key, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]byte), nil
}

// GetFresh reads the primary directly, skipping both the cache and any
// in-flight shared read.
func (c *Cached) GetFresh(ctx context.Context, key string) ([]byte, error) {
	return c.primary.Get(ctx, key)
}

func (c *Cached) Set(ctx context.Context, key string, value []byte) error {
	if err := c.primary.Set(ctx, key, value); err != nil {
		return err
	}
	c.invalidate(key)
	return nil
}

func (c *Cached) Delete(ctx context.Context, key string) error {
	if err := c.primary.Delete(ctx, key); err != nil {
		return err
	}
	c.invalidate(key)
	return nil
}

func (c *Cached) fill(ctx context.Context, s *fillSlot, gen uint64, key string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen {
		return
	}

	setCtx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()
	if err := c.cache.Set(setCtx, key, data); err != nil {
		c.log.Warn("cache set error", "key", key, "error", err)
	}
}

func (c *Cached) invalidate(key string) {
	s := c.slot(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++

	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()
	if err := c.cache.Delete(ctx, key); err != nil {
		c.log.Warn("cache invalidate error", "key", key, "error", err)
	}
}
