// Package wishlist keeps the set of products a shopper has marked.
package wishlist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fjod/go_storefront/internal/broadcast"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/fjod/go_storefront/internal/session"
)

const namespace = "wishlist"

type Store struct {
	state *session.State[domain.WishlistEntry]
}

func NewStore(store kv.Store, bus broadcast.Broadcaster, log *slog.Logger) *Store {
	return &Store{
		state: session.NewState[domain.WishlistEntry](namespace, broadcast.WishlistUpdated, store, bus, log),
	}
}

func (s *Store) Entries(ctx context.Context, sessionID string) ([]domain.WishlistEntry, error) {
	return s.state.Load(ctx, sessionID)
}

func (s *Store) Toggle(ctx context.Context, sessionID string, p domain.Product) ([]domain.WishlistEntry, domain.Notice, error) {
	var added bool
	entries, err := s.state.Mutate(ctx, sessionID, func(entries []domain.WishlistEntry) []domain.WishlistEntry {
		var out []domain.WishlistEntry
		out, added = ToggleEntry(entries, p)
		return out
	})
	if err != nil {
		return nil, domain.Notice{}, err
	}

	if added {
		return entries, domain.Notice{
			Level:   domain.NoticeSuccess,
			Message: fmt.Sprintf("%s added to wishlist!", p.Title),
		}, nil
	}
	return entries, domain.Notice{Level: domain.NoticeInfo, Message: "Product removed from wishlist!"}, nil
}
