package cart

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/fjod/go_storefront/internal/events"
	"github.com/segmentio/kafka-go"
)

// Poller clears a session's cart when an order placed from it shows up on
// the order topic.
type Poller struct {
	store  *Store
	reader *kafka.Reader
	log    *slog.Logger
}

func NewPoller(store *Store, log *slog.Logger, topic, groupID string, brokers ...string) *Poller {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return &Poller{store: store, reader: reader, log: log}
}

// Run blocks until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return nil
		}
		p.consumeOne(ctx)
	}
}

func (p *Poller) Close() error {
	return p.reader.Close()
}

func (p *Poller) consumeOne(ctx context.Context) {
	m, err := p.reader.ReadMessage(ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.log.Error("error reading message", "error", err)
		}
		return
	}

	var ev events.OrderPlaced
	if err := json.Unmarshal(m.Value, &ev); err != nil {
		p.log.Error("error parsing message", "offset", m.Offset, "error", err)
		return
	}
	if ev.SessionID == "" {
		p.log.Warn("order event without session id", "order_id", ev.OrderID)
		return
	}

	if err := p.store.Clear(ctx, ev.SessionID); err != nil {
		p.log.Error("failed to clear cart", "session_id", ev.SessionID, "order_id", ev.OrderID, "error", err)
		return
	}
	p.log.Info("cart cleared after order", "session_id", ev.SessionID, "order_id", ev.OrderID)
}
