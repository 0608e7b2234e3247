package cart

import (
	"context"

	"github.com/fjod/go_storefront/internal/events"
)

// Clearer empties the ordering session's cart in-process. It stands in for
// the Kafka round trip when no brokers are configured.
type Clearer struct {
	store *Store
}

func NewClearer(store *Store) *Clearer {
	return &Clearer{store: store}
}

func (c *Clearer) PublishOrderPlaced(ctx context.Context, ev events.OrderPlaced) error {
	if ev.SessionID == "" {
		return nil
	}
	return c.store.Clear(ctx, ev.SessionID)
}
