// Package checkout turns a cart and a filled-in form into a stored order.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/fjod/go_storefront/internal/domain"
	"github.com/fjod/go_storefront/internal/events"
	"github.com/fjod/go_storefront/internal/orders"
	"github.com/google/uuid"
)

var ErrEmptyCart = errors.New("cart is empty, nothing to checkout")

const confirmationPrefix = "/order-confirmation/"

type Result struct {
	OrderID          string `json:"orderId"`
	ConfirmationPath string `json:"confirmationPath"`
}

type Service struct {
	orders    orders.Repository
	publisher events.Publisher
	log       *slog.Logger
	newID     func() string
	now       func() time.Time
}

func NewService(repo orders.Repository, publisher events.Publisher, log *slog.Logger) *Service {
	return &Service{
		orders:    repo,
		publisher: publisher,
		log:       log,
		newID:     uuid.NewString,
		now:       time.Now,
	}
}

// Submit validates the form, stores a new order for the given cart lines and
// returns its id. Every call creates a new order; there is no retry and no
// deduplication.
func (s *Service) Submit(ctx context.Context, sessionID string, form Form, lines []domain.CartLine) (Result, error) {
	if err := form.Validate(); err != nil {
		return Result{}, err
	}
	if len(lines) == 0 {
		return Result{}, ErrEmptyCart
	}

	order := &domain.Order{
		OrderID:       s.newID(),
		SessionID:     sessionID,
		Customer:      form.Customer(),
		CartItems:     append([]domain.CartLine(nil), lines...),
		PaymentMethod: domain.PaymentMethod(form.PaymentMethod),
		CreatedAt:     s.now().UTC(),
	}

	if err := s.orders.CreateOrder(ctx, order); err != nil {
		s.log.ErrorContext(ctx, "failed to create order", "order_id", order.OrderID, "error", err)
		return Result{}, fmt.Errorf("create order: %w", err)
	}
	s.log.InfoContext(ctx, "order placed",
		"order_id", order.OrderID,
		"session_id", sessionID,
		"items", len(order.CartItems),
		"total", order.Total().String())

	if err := s.publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(*order)); err != nil {
		s.log.ErrorContext(ctx, "failed to publish order event", "order_id", order.OrderID, "error", err)
	}

	return Result{
		OrderID:          order.OrderID,
		ConfirmationPath: confirmationPrefix + order.OrderID,
	}, nil
}

// Confirmation looks up a placed order for the confirmation view.
func (s *Service) Confirmation(ctx context.Context, orderID string) (*domain.Order, error) {
	order, err := s.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, orders.ErrOrderNotFound) {
			s.log.ErrorContext(ctx, "failed to fetch order", "order_id", orderID, "error", err)
		}
		return nil, err
	}
	return order, nil
}
