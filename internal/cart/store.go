// Package cart keeps the shopper's cart: one line per product id with a
// quantity and display fields captured when the product was added.
package cart

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/fjod/go_storefront/internal/broadcast"
	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/kv"
	"github.com/fjod/go_storefront/internal/session"
)

const namespace = "cart"

type Store struct {
	state *session.State[domain.CartLine]
}

func NewStore(store kv.Store, bus broadcast.Broadcaster, log *slog.Logger) *Store {
	return &Store{
		state: session.NewState[domain.CartLine](namespace, broadcast.CartUpdated, store, bus, log),
	}
}

func (s *Store) Lines(ctx context.Context, sessionID string) ([]domain.CartLine, error) {
	return s.state.Load(ctx, sessionID)
}

func (s *Store) Add(ctx context.Context, sessionID string, p domain.Product) ([]domain.CartLine, domain.Notice, error) {
	lines, err := s.state.Mutate(ctx, sessionID, func(lines []domain.CartLine) []domain.CartLine {
		return AddLine(lines, p)
	})
	if err != nil {
		return nil, domain.Notice{}, err
	}
	return lines, domain.Notice{
		Level:   domain.NoticeSuccess,
		Message: fmt.Sprintf("%s added to cart!", p.Title),
	}, nil
}

func (s *Store) Remove(ctx context.Context, sessionID, productID string) ([]domain.CartLine, domain.Notice, error) {
	lines, err := s.state.Mutate(ctx, sessionID, func(lines []domain.CartLine) []domain.CartLine {
		return RemoveLine(lines, productID)
	})
	if err != nil {
		return nil, domain.Notice{}, err
	}
	return lines, domain.Notice{Level: domain.NoticeInfo, Message: "Item removed from cart"}, nil
}

func (s *Store) SetQuantity(ctx context.Context, sessionID, productID string, quantity int) ([]domain.CartLine, error) {
	return s.state.Mutate(ctx, sessionID, func(lines []domain.CartLine) []domain.CartLine {
		return SetLineQuantity(lines, productID, quantity)
	})
}

// Clear empties the cart, e.g. once an order for it was placed.
func (s *Store) Clear(ctx context.Context, sessionID string) error {
	return s.state.Reset(ctx, sessionID)
}
