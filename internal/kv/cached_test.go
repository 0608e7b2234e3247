package kv

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	*MemoryStore
	gets  atomic.Int32
	delay time.Duration
	err   error
}

func (c *countingStore) Get(ctx context.Context, key string) ([]byte, error) {
	c.gets.Add(1)
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.delay):
	}
	if c.err != nil {
		return nil, c.err
	}
	return c.MemoryStore.Get(ctx, key)
}

// lateStore answers Get with the value present when the call started, but
// only after delay.
type lateStore struct {
	*MemoryStore
	delay time.Duration
}

func (l *lateStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := l.MemoryStore.Get(ctx, key)
	time.Sleep(l.delay)
	return v, err
}

// slowSetStore delays every Set.
type slowSetStore struct {
	*MemoryStore
	delay time.Duration
}

func (s *slowSetStore) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(s.delay)
	return s.MemoryStore.Set(ctx, key, value)
}

func TestCached_MissFillsCache(t *testing.T) {
	primary := NewMemoryStore()
	cache := NewMemoryStore()
	c := NewCached(primary, cache, logger.Discard())
	ctx := context.Background()

	require.NoError(t, primary.Set(ctx, "k", []byte("v")))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", string(got))

	assert.Eventually(t, func() bool {
		v, err := cache.Get(ctx, "k")
		return err == nil && string(v) == "v"
	}, time.Second, 10*time.Millisecond)
}

func TestCached_HitSkipsPrimary(t *testing.T) {
	primary := &countingStore{MemoryStore: NewMemoryStore()}
	cache := NewMemoryStore()
	c := NewCached(primary, cache, logger.Discard())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("cached")))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "cached", string(got))
	assert.Equal(t, int32(0), primary.gets.Load())
}

func TestCached_SetInvalidates(t *testing.T) {
	primary := NewMemoryStore()
	cache := NewMemoryStore()
	c := NewCached(primary, cache, logger.Discard())
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "k", []byte("old")))
	require.NoError(t, c.Set(ctx, "k", []byte("new")))

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "new", string(got))
}

func TestCached_DeleteInvalidates(t *testing.T) {
	primary := NewMemoryStore()
	cache := NewMemoryStore()
	c := NewCached(primary, cache, logger.Discard())
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", []byte("v")))
	require.NoError(t, cache.Set(ctx, "k", []byte("v")))
	require.NoError(t, c.Delete(ctx, "k"))

	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCached_PrimaryErrorPropagates(t *testing.T) {
	boom := errors.New("boom")
	primary := &countingStore{MemoryStore: NewMemoryStore(), err: boom}
	c := NewCached(primary, NewMemoryStore(), logger.Discard())

	_, err := c.Get(context.Background(), "k")
	assert.ErrorIs(t, err, boom)
}

func TestCached_ConcurrentMissesShareOneRead(t *testing.T) {
	primary := &countingStore{MemoryStore: NewMemoryStore(), delay: 50 * time.Millisecond}
	c := NewCached(primary, NewMemoryStore(), logger.Discard())
	ctx := context.Background()
	require.NoError(t, primary.MemoryStore.Set(ctx, "k", []byte("v")))

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := c.Get(ctx, "k")
			assert.NoError(t, err)
			assert.Equal(t, "v", string(got))
		}()
	}
	wg.Wait()

	assert.Less(t, primary.gets.Load(), int32(10))
}

func TestCached_ReadBeforeWriteDoesNotRefillCache(t *testing.T) {
	primary := &lateStore{MemoryStore: NewMemoryStore(), delay: 50 * time.Millisecond}
	cache := NewMemoryStore()
	c := NewCached(primary, cache, logger.Discard())
	ctx := context.Background()
	require.NoError(t, primary.MemoryStore.Set(ctx, "k", []byte("v1")))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Get(ctx, "k")
	}()

	time.Sleep(10 * time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", []byte("v2")))
	<-done

	_, err := cache.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	primary.delay = 0
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", string(got))
}

func TestCached_SlowCacheFillNeverWinsOverWrite(t *testing.T) {
	primary := NewMemoryStore()
	cache := &slowSetStore{MemoryStore: NewMemoryStore(), delay: 20 * time.Millisecond}
	c := NewCached(primary, cache, logger.Discard())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		_, err := c.Get(ctx, "k")
		if i > 1 {
			require.NoError(t, err)
		}
		require.NoError(t, c.Set(ctx, "k", []byte{byte('0' + i)}))
	}

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "5", string(got))
}

func TestCached_GetFreshSkipsCache(t *testing.T) {
	primary := NewMemoryStore()
	cache := NewMemoryStore()
	c := NewCached(primary, cache, logger.Discard())
	ctx := context.Background()

	require.NoError(t, primary.Set(ctx, "k", []byte("primary")))
	require.NoError(t, cache.Set(ctx, "k", []byte("stale")))

	got, err := GetFresh(ctx, c, "k")
	require.NoError(t, err)
	assert.Equal(t, "primary", string(got))

	got, err = GetFresh(ctx, primary, "k")
	require.NoError(t, err)
	assert.Equal(t, "primary", string(got))
}

func TestCached_CanceledCallerDoesNotFailWaiters(t *testing.T) {
	primary := &countingStore{MemoryStore: NewMemoryStore(), delay: 50 * time.Millisecond}
	c := NewCached(primary, NewMemoryStore(), logger.Discard())
	require.NoError(t, primary.MemoryStore.Set(context.Background(), "k", []byte("v")))

	first, cancel := context.WithCancel(context.Background())
	go func() { _, _ = c.Get(first, "k") }()
	time.Sleep(5 * time.Millisecond)

	type result struct {
		v   []byte
		err error
	}
	second := make(chan result, 1)
	go func() {
		v, err := c.Get(context.Background(), "k")
		second <- result{v, err}
	}()
	time.Sleep(5 * time.Millisecond)
	cancel()

	r := <-second
	require.NoError(t, r.err)
	assert.Equal(t, "v", string(r.v))
}
