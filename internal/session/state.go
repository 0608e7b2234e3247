// Package session holds per-shopper collections (cart lines, wishlist
// entries) as one serialized array per session. Every change rewrites the
// whole array and announces it on the broadcaster.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fjod/go_storefront/internal/broadcast"
	"github.com/fjod/go_storefront/internal/kv"
)

type State[T any] struct {
	namespace string
	topic     broadcast.Topic
	store     kv.Store
	bus       broadcast.Broadcaster
	locks     *Locks
	log       *slog.Logger
}

func NewState[T any](namespace string, topic broadcast.Topic, store kv.Store, bus broadcast.Broadcaster, log *slog.Logger) *State[T] {
	return &State[T]{
		namespace: namespace,
		topic:     topic,
		store:     store,
		bus:       bus,
		locks:     NewLocks(),
		log:       log,
	}
}

// Load returns the stored collection, or an empty one when nothing was saved.
func (s *State[T]) Load(ctx context.Context, sessionID string) ([]T, error) {
	return s.load(ctx, sessionID, s.store.Get)
}

func (s *State[T]) load(ctx context.Context, sessionID string, get func(context.Context, string) ([]byte, error)) ([]T, error) {
	data, err := get(ctx, kv.Key(s.namespace, sessionID))
	if errors.Is(err, kv.ErrNotFound) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", s.namespace, err)
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.namespace, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// Mutate applies fn to the current collection under the session lock, saves
// the result and publishes the change. fn must not retain its argument.
func (s *State[T]) Mutate(ctx context.Context, sessionID string, fn func([]T) []T) ([]T, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	// the base of a read-modify-write must never come from a cache
	items, err := s.load(ctx, sessionID, func(ctx context.Context, key string) ([]byte, error) {
		return kv.GetFresh(ctx, s.store, key)
	})
	if err != nil {
		return nil, err
	}

	items = fn(items)
	if items == nil {
		items = []T{}
	}

	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", s.namespace, err)
	}
	if err := s.store.Set(ctx, kv.Key(s.namespace, sessionID), data); err != nil {
		return nil, fmt.Errorf("failed to save %s: %w", s.namespace, err)
	}

	s.publish(ctx, sessionID)
	return items, nil
}

// Reset removes the stored collection and publishes the change.
func (s *State[T]) Reset(ctx context.Context, sessionID string) error {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	if err := s.store.Delete(ctx, kv.Key(s.namespace, sessionID)); err != nil {
		return fmt.Errorf("failed to reset %s: %w", s.namespace, err)
	}

	s.publish(ctx, sessionID)
	return nil
}

func (s *State[T]) publish(ctx context.Context, sessionID string) {
	ev := broadcast.Event{Topic: s.topic, SessionID: sessionID}
	if err := s.bus.Publish(ctx, ev); err != nil {
		s.log.WarnContext(ctx, "failed to broadcast change",
			"topic", s.topic, "session_id", sessionID, "error", err)
	}
}
