package orders

import (
	"context"
	"fmt"

	"github.com/fjod/go_storefront/internal/domain"
)

const (
	orderByIDQuery       = `*[_type == "checkout" && orderId == $orderId][0]`
	ordersBySessionQuery = `*[_type == "checkout" && sessionId == $sessionId] | order(createdAt desc)`
)

// ContentStore is the subset of the content store client used for orders.
type ContentStore interface {
	Query(ctx context.Context, query string, params map[string]any, out any) (bool, error)
	Create(ctx context.Context, doc any) (string, error)
}

// checkoutDocument is an order as stored in the content store.
type checkoutDocument struct {
	Type string `json:"_type"`
	domain.Order
}

// CMSRepository writes orders as "checkout" documents, the same documents
// the content studio shows to shop staff.
type CMSRepository struct {
	store ContentStore
}

func NewCMSRepository(store ContentStore) *CMSRepository {
	return &CMSRepository{store: store}
}

func (r *CMSRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	doc := checkoutDocument{Type: "checkout", Order: *order}
	if _, err := r.store.Create(ctx, doc); err != nil {
		return fmt.Errorf("create checkout document: %w", err)
	}
	return nil
}

func (r *CMSRepository) GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error) {
	var doc checkoutDocument
	found, err := r.store.Query(ctx, orderByIDQuery, map[string]any{"orderId": orderID}, &doc)
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	if !found {
		return nil, ErrOrderNotFound
	}
	return &doc.Order, nil
}

func (r *CMSRepository) ListOrdersBySession(ctx context.Context, sessionID string) ([]*domain.Order, error) {
	var docs []checkoutDocument
	if _, err := r.store.Query(ctx, ordersBySessionQuery, map[string]any{"sessionId": sessionID}, &docs); err != nil {
		return nil, fmt.Errorf("query orders by session: %w", err)
	}

	out := make([]*domain.Order, 0, len(docs))
	for i := range docs {
		out = append(out, &docs[i].Order)
	}
	return out, nil
}
