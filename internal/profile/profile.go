// Package profile keeps the shopper's self-registered profile. There is no
// authentication behind it: the profile belongs to the session.
package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/kv"
)

var (
	ErrProfileNotFound = errors.New("no user profile found")
	ErrInvalidProfile  = errors.New("profile requires a name and an email")
)

const (
	namespace = "user"

	mockPhone      = "+1 234-567-8900"
	mockJoinedDate = "January 2024"
)

var mockOrderHistory = []domain.OrderSummary{
	{ID: "1", Date: "2024-01-15", Total: "$50.00", Status: "Delivered"},
	{ID: "2", Date: "2024-01-10", Total: "$30.00", Status: "Processing"},
	{ID: "3", Date: "2024-01-05", Total: "$75.00", Status: "Shipped"},
}

var mockWishlist = []domain.WishlistSummary{
	{ID: "1", Name: "Modern Sofa", Price: "$599.99"},
	{ID: "2", Name: "Dining Table", Price: "$399.99"},
	{ID: "3", Name: "Reading Lamp", Price: "$79.99"},
}

type OrderLister interface {
	ListOrdersBySession(ctx context.Context, sessionID string) ([]*domain.Order, error)
}

type WishlistReader interface {
	Entries(ctx context.Context, sessionID string) ([]domain.WishlistEntry, error)
}

type Service struct {
	store    kv.Store
	orders   OrderLister
	wishlist WishlistReader
	log      *slog.Logger
}

func NewService(store kv.Store, orders OrderLister, wishlist WishlistReader, log *slog.Logger) *Service {
	return &Service{store: store, orders: orders, wishlist: wishlist, log: log}
}

// Get returns the stored profile with display data filled in: the session's
// real orders and wishlist when it has any, sample data otherwise.
func (s *Service) Get(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
	p, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if p.Phone == "" {
		p.Phone = mockPhone
	}
	if p.JoinedDate == "" {
		p.JoinedDate = mockJoinedDate
	}
	if p.Addresses == nil {
		p.Addresses = []string{}
	}
	p.OrderHistory = s.orderHistory(ctx, sessionID)
	p.Wishlist = s.wishlistSummary(ctx, sessionID)
	return p, nil
}

func (s *Service) Register(ctx context.Context, sessionID string, p domain.UserProfile) (*domain.UserProfile, error) {
	if strings.TrimSpace(p.Name) == "" || strings.TrimSpace(p.Email) == "" {
		return nil, ErrInvalidProfile
	}
	if err := s.save(ctx, sessionID, p); err != nil {
		return nil, err
	}
	return s.Get(ctx, sessionID)
}

// Save replaces an existing profile with the edited one.
func (s *Service) Save(ctx context.Context, sessionID string, p domain.UserProfile) (*domain.UserProfile, error) {
	if _, err := s.load(ctx, sessionID); err != nil {
		return nil, err
	}
	return s.Register(ctx, sessionID, p)
}

func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if err := s.store.Delete(ctx, kv.Key(namespace, sessionID)); err != nil {
		return fmt.Errorf("failed to delete profile: %w", err)
	}
	return nil
}

func (s *Service) load(ctx context.Context, sessionID string) (*domain.UserProfile, error) {
	data, err := s.store.Get(ctx, kv.Key(namespace, sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	var p domain.UserProfile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to decode profile: %w", err)
	}
	return &p, nil
}

func (s *Service) save(ctx context.Context, sessionID string, p domain.UserProfile) error {
	// derived fields are recomputed on every read
	p.OrderHistory = nil
	p.Wishlist = nil

	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := s.store.Set(ctx, kv.Key(namespace, sessionID), data); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

func (s *Service) orderHistory(ctx context.Context, sessionID string) []domain.OrderSummary {
	list, err := s.orders.ListOrdersBySession(ctx, sessionID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to list orders for profile", "session_id", sessionID, "error", err)
	}
	if len(list) == 0 {
		return mockOrderHistory
	}

	out := make([]domain.OrderSummary, 0, len(list))
	for _, o := range list {
		out = append(out, domain.OrderSummary{
			ID:     o.OrderID,
			Date:   o.CreatedAt.Format("2006-01-02"),
			Total:  "$" + o.Total().StringFixed(2),
			Status: "Processing",
		})
	}
	return out
}

func (s *Service) wishlistSummary(ctx context.Context, sessionID string) []domain.WishlistSummary {
	entries, err := s.wishlist.Entries(ctx, sessionID)
	if err != nil {
		s.log.WarnContext(ctx, "failed to load wishlist for profile", "session_id", sessionID, "error", err)
	}
	if len(entries) == 0 {
		return mockWishlist
	}

	out := make([]domain.WishlistSummary, 0, len(entries))
	for _, e := range entries {
		out = append(out, domain.WishlistSummary{
			ID:    e.ProductID,
			Name:  e.Title,
			Price: "$" + e.Price.StringFixed(2),
		})
	}
	return out
}
