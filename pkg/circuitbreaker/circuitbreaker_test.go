package circuitbreaker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fjod/go_storefront/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_TripsAfterConsecutiveFailures(t *testing.T) {
	b := New(Settings{Name: "test", ConsecutiveFailures: 3, OpenTimeout: time.Minute, HalfOpenRequests: 1}, logger.Discard())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		err := b.Execute(func() error { return boom })
		require.ErrorIs(t, err, boom)
	}

	called := false
	err := b.Execute(func() error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrOpen)
	assert.False(t, called)
	assert.Equal(t, "open", b.State())
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := New(Settings{Name: "test", ConsecutiveFailures: 2, OpenTimeout: time.Minute, HalfOpenRequests: 1}, logger.Discard())
	boom := errors.New("boom")

	_ = b.Execute(func() error { return boom })
	require.NoError(t, b.Execute(func() error { return nil }))
	_ = b.Execute(func() error { return boom })

	assert.Equal(t, "closed", b.State())
}

func TestBreaker_CanceledDoesNotCount(t *testing.T) {
	b := New(Settings{Name: "test", ConsecutiveFailures: 1, OpenTimeout: time.Minute, HalfOpenRequests: 1}, logger.Discard())

	err := b.Execute(func() error { return context.Canceled })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "closed", b.State())
}

func TestBreaker_HalfOpenAfterTimeout(t *testing.T) {
	b := New(Settings{Name: "test", ConsecutiveFailures: 1, OpenTimeout: 20 * time.Millisecond, HalfOpenRequests: 1}, logger.Discard())

	_ = b.Execute(func() error { return errors.New("boom") })
	require.Equal(t, "open", b.State())

	require.Eventually(t, func() bool {
		return b.State() == "half-open"
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, "closed", b.State())
}
