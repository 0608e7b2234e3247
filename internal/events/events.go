// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/shopspring/decimal"
)

const EventOrderPlaced = "order.placed"

type OrderPlaced struct {
	OrderID   string            `json:"order_id"`
	SessionID string            `json:"session_id"`
	Items     []domain.CartLine `json:"items"`
	Total     decimal.Decimal   `json:"total_amount"`
	PlacedAt  time.Time         `json:"placed_at"`
}

func NewOrderPlaced(o domain.Order) OrderPlaced {
	return OrderPlaced{
		OrderID:   o.OrderID,
		SessionID: o.SessionID,
		Items:     o.CartItems,
		Total:     o.Total(),
		PlacedAt:  o.CreatedAt,
	}
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, ev OrderPlaced) error
}
