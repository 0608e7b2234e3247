package cart

import (
	"context"
	"testing"
	"time"

	"github.com/fjod/go_storefront/internal/broadcast"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore() (*Store, *kv.MemoryStore, *broadcast.Hub) {
	mem := kv.NewMemoryStore()
	hub := broadcast.NewHub()
	return NewStore(mem, hub, logger.Discard()), mem, hub
}

func TestStore_AddTwiceMerges(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()

	_, notice, err := s.Add(ctx, "s1", product("p1", "Syltherine"))
	require.NoError(t, err)
	assert.Equal(t, "Syltherine added to cart!", notice.Message)
	assert.Equal(t, domain.NoticeSuccess, notice.Level)

	lines, _, err := s.Add(ctx, "s1", product("p1", "Syltherine"))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, 2, lines[0].Quantity)
}

func TestStore_RemoveMissingIsNoop(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()

	_, _, err := s.Add(ctx, "s1", product("p1", "a"))
	require.NoError(t, err)

	lines, notice, err := s.Remove(ctx, "s1", "missing")
	require.NoError(t, err)
	assert.Len(t, lines, 1)
	assert.Equal(t, "Item removed from cart", notice.Message)
}

func TestStore_SetQuantityPersists(t *testing.T) {
	s, mem, _ := newTestStore()
	ctx := context.Background()

	_, _, err := s.Add(ctx, "s1", product("p1", "a"))
	require.NoError(t, err)
	_, err = s.SetQuantity(ctx, "s1", "p1", 0)
	require.NoError(t, err)

	raw, err := mem.Get(ctx, "cart:s1")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"quantity":0`)

	lines, err := s.Lines(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, lines[0].Quantity)
}

func TestStore_EveryMutationBroadcasts(t *testing.T) {
	s, _, hub := newTestStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, _ := hub.Subscribe(ctx, "s1")

	_, _, _ = s.Add(ctx, "s1", product("p1", "a"))
	_, _ = s.SetQuantity(ctx, "s1", "p1", 3)
	_, _, _ = s.Remove(ctx, "s1", "p1")
	_ = s.Clear(ctx, "s1")

	for i := 0; i < 4; i++ {
		select {
		case ev := <-events:
			assert.Equal(t, broadcast.CartUpdated, ev.Topic)
		case <-time.After(time.Second):
			t.Fatalf("missing broadcast %d", i)
		}
	}
}

func TestStore_SessionsAreIsolated(t *testing.T) {
	s, _, _ := newTestStore()
	ctx := context.Background()

	_, _, err := s.Add(ctx, "s1", product("p1", "a"))
	require.NoError(t, err)

	lines, err := s.Lines(ctx, "s2")
	require.NoError(t, err)
	assert.Empty(t, lines)
}

// slowCache delays every Set, so cache fills land late.
type slowCache struct {
	*kv.MemoryStore
	delay time.Duration
}

func (s *slowCache) Set(ctx context.Context, key string, value []byte) error {
	time.Sleep(s.delay)
	return s.MemoryStore.Set(ctx, key, value)
}

func TestStore_AddTwiceMergesThroughCacheTier(t *testing.T) {
	cache := &slowCache{MemoryStore: kv.NewMemoryStore(), delay: 20 * time.Millisecond}
	cached := kv.NewCached(kv.NewMemoryStore(), cache, logger.Discard())
	s := NewStore(cached, broadcast.NewHub(), logger.Discard())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, _, err := s.Add(ctx, "s1", product("p1", "Syltherine"))
		require.NoError(t, err)

		lines, err := s.Lines(ctx, "s1")
		require.NoError(t, err)
		require.Len(t, lines, 1)
		assert.Equal(t, i+1, lines[0].Quantity)
	}

	_, err := s.SetQuantity(ctx, "s1", "p1", 7)
	require.NoError(t, err)
	lines, err := s.Lines(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 7, lines[0].Quantity)
}
