package orders

import (
	"context"
	"sort"
	"sync"

	"github.com/fjod/go_storefront/internal/domain"
)

// MemoryRepository keeps orders for the lifetime of the process.
type MemoryRepository struct {
	mu     sync.RWMutex
	orders map[string]domain.Order
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{orders: make(map[string]domain.Order)}
}

func (r *MemoryRepository) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[order.OrderID]; exists {
		return ErrDuplicateOrder
	}
	r.orders[order.OrderID] = clone(*order)
	return nil
}

func (r *MemoryRepository) GetOrderByID(_ context.Context, orderID string) (*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, ok := r.orders[orderID]
	if !ok {
		return nil, ErrOrderNotFound
	}
	c := clone(o)
	return &c, nil
}

func (r *MemoryRepository) ListOrdersBySession(_ context.Context, sessionID string) ([]*domain.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Order
	for _, o := range r.orders {
		if o.SessionID == sessionID {
			c := clone(o)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func clone(o domain.Order) domain.Order {
	o.CartItems = append([]domain.CartLine(nil), o.CartItems...)
	return o
}
