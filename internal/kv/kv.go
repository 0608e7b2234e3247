// Package kv stores opaque values by key. Values are always read and written
// wholesale; there are no partial updates and no versioning.
package kv

import (
	"context"
	"errors"
	"fmt"
)

var ErrNotFound = errors.New("key not found")

type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	// Delete succeeds when the key does not exist.
	Delete(ctx context.Context, key string) error
}

// FreshReader is implemented by stores that may answer reads from a cache.
// GetFresh always reads the authoritative copy.
type FreshReader interface {
	GetFresh(ctx context.Context, key string) ([]byte, error)
}

// GetFresh reads key from the authoritative copy when s is cached, and
// through s.Get otherwise. Read-modify-write callers must use it.
func GetFresh(ctx context.Context, s Store, key string) ([]byte, error) {
	if f, ok := s.(FreshReader); ok {
		return f.GetFresh(ctx, key)
	}
	return s.Get(ctx, key)
}

// Key joins a namespace and a session id, e.g. "cart:<session>".
func Key(namespace, sessionID string) string {
	return fmt.Sprintf("%s:%s", namespace, sessionID)
}
