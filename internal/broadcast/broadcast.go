// Package broadcast fans session-scoped change events out to every open view
// of that session. Delivery is best effort: a subscriber that is not keeping
// up loses events rather than blocking the publisher.
package broadcast

import "context"

type Topic string

const (
	CartUpdated     Topic = "cartUpdated"
	WishlistUpdated Topic = "wishlistUpdated"
)

type Event struct {
	Topic     Topic  `json:"event"`
	SessionID string `json:"-"`
}

type Broadcaster interface {
	Publish(ctx context.Context, ev Event) error
	// Subscribe returns a channel of events for the session. The channel is
	// closed once ctx is done.
	Subscribe(ctx context.Context, sessionID string) (<-chan Event, error)
}

const subscriberBuffer = 16
