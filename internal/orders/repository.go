// Package orders stores placed orders. Orders are written once and only read
// afterwards.
package orders

import (
	"context"
	"errors"

	"github.com/fjod/go_storefront/internal/domain"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrDuplicateOrder = errors.New("order with this id already exists")
)

type Repository interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*domain.Order, error)
	// ListOrdersBySession returns newest first.
	ListOrdersBySession(ctx context.Context, sessionID string) ([]*domain.Order, error)
}
