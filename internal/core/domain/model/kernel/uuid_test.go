package kernel_test

import (
	"testing"

	"supplychain/internal/core/domain/model/kernel"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUUID(t *testing.T) {
	t.Run("should create a valid random UUID", func(t *testing.T) {
		id := kernel.NewUUID()

		require.NoError(t, id.Validate())
		assert.Equal(t, uuid.Version(4), id.Bytes().Version())
	})

	t.Run("should create unique UUIDs", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		assert.False(t, id1.IsEqual(id2))
	})
}

func TestNewTimeOrderedUUID(t *testing.T) {
	t.Run("should create version 7 identifiers", func(t *testing.T) {
		id := kernel.NewTimeOrderedUUID()

		require.NoError(t, id.Validate())
		assert.Equal(t, uuid.Version(7), id.Bytes().Version())
	})

	t.Run("should sort by creation order", func(t *testing.T) {
		previous := kernel.NewTimeOrderedUUID()
		for range 50 {
			next := kernel.NewTimeOrderedUUID()
			assert.Less(t, previous.String(), next.String())
			previous = next
		}
	})
}

func TestUUIDFromString(t *testing.T) {
	t.Run("should parse a valid string", func(t *testing.T) {
		id, err := kernel.UUIDFromString("550e8400-e29b-41d4-a716-446655440000")

		require.NoError(t, err)
		assert.Equal(t, "550e8400-e29b-41d4-a716-446655440000", id.String())
	})

	t.Run("should reject malformed strings", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid UUID format")
	})

	t.Run("should reject the nil UUID", func(t *testing.T) {
		_, err := kernel.UUIDFromString(uuid.Nil.String())

		require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)
	})

	t.Run("should round trip through String", func(t *testing.T) {
		original := kernel.NewUUID()

		parsed, err := kernel.UUIDFromString(original.String())

		require.NoError(t, err)
		assert.True(t, original.IsEqual(parsed))
	})
}

func TestUUID_Validate(t *testing.T) {
	var zero kernel.UUID

	require.ErrorIs(t, zero.Validate(), kernel.ErrUUIDIsNotConstructed)
}
