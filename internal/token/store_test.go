package token

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryFallbackLifecycle(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7, "hash-a", time.Now().UTC().Add(time.Hour)))

	id, err := s.Validate(ctx, "hash-a")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = s.Validate(ctx, "unknown")
	assert.ErrorIs(t, err, ErrInvalid)

	require.NoError(t, s.Revoke(ctx, "hash-a"))
	_, err = s.Validate(ctx, "hash-a")
	assert.ErrorIs(t, err, ErrInvalid)

	// Revoking twice is harmless.
	require.NoError(t, s.Revoke(ctx, "hash-a"))
}

func TestMemoryFallbackExpiry(t *testing.T) {
	s := NewStore(nil)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, 7, "hash-b", time.Now().UTC().Add(-time.Second)))
	_, err := s.Validate(ctx, "hash-b")
	assert.ErrorIs(t, err, ErrInvalid)
}
