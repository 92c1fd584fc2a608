package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "civreg/pkg/domain-errors"
)

// TestParseUUID_Invariants validates the parsing invariant:
// "IDs must be well-formed UUIDs; empty input is rejected at the boundary."
func TestParseUUID_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseResidenceID("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects invalid format", func(t *testing.T) {
		_, err := ParseTransferID("not-a-uuid")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("accepts valid UUID", func(t *testing.T) {
		validUUID := uuid.New()
		id, err := ParseWardID(validUUID.String())
		require.NoError(t, err)
		assert.Equal(t, WardID(validUUID), id)
	})

	t.Run("nil UUID parses but reports IsNil", func(t *testing.T) {
		id, err := ParseVillageID(uuid.Nil.String())
		require.NoError(t, err)
		assert.True(t, id.IsNil())
	})
}

// TestTypeDistinction verifies the compiler enforces type safety.
// This is a compile-time check - if this compiles, the invariant holds.
func TestTypeDistinction(t *testing.T) {
	wardID := WardID(uuid.New())
	villageID := VillageID(uuid.New())

	// These would fail to compile if types were interchangeable:
	// var _ WardID = villageID   // compile error
	// var _ VillageID = wardID   // compile error

	assert.NotEqual(t, uuid.UUID(wardID), uuid.UUID(villageID))
}

func TestParseNIDANumber(t *testing.T) {
	t.Run("accepts 20 digits", func(t *testing.T) {
		n, err := ParseNIDANumber("19900101123450000123")
		require.NoError(t, err)
		assert.Equal(t, "19900101123450000123", n.String())
	})

	t.Run("rejects empty", func(t *testing.T) {
		_, err := ParseNIDANumber("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects wrong length", func(t *testing.T) {
		_, err := ParseNIDANumber("12345")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects non-digits", func(t *testing.T) {
		_, err := ParseNIDANumber("1990010112345000012X")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
