package core

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunID_IsValidUUID(t *testing.T) {
	id := NewRunID()
	require.False(t, ID(id).IsEmpty())

	_, err := uuid.Parse(id.String())
	assert.NoError(t, err)
}

func TestNewID_IsUnique(t *testing.T) {
	seen := make(map[ID]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.False(t, seen[id], "duplicate ID %s", id)
		seen[id] = true
	}
}

func TestParseRunID(t *testing.T) {
	id, err := ParseRunID("0191e9a0-0000-7000-8000-000000000000")
	require.NoError(t, err)
	assert.Equal(t, "0191e9a0-0000-7000-8000-000000000000", id.String())

	_, err = ParseRunID("   ")
	assert.Error(t, err)
}

func TestErrorHelpers_MatchWrappedErrors(t *testing.T) {
	err := NewMissingColumnError("practice_location")
	assert.True(t, IsSchemaError(err))
	assert.ErrorContains(t, err, "practice_location")

	err = fmt.Errorf("loading stage: %w", NewColumnLengthError("size", 51, 50))
	assert.True(t, IsSchemaError(err))

	err = NewRankDeficientError("6 parameters")
	assert.True(t, IsInsufficientDataError(err))
	assert.False(t, IsSchemaError(err))

	assert.True(t, IsNotFoundError(fmt.Errorf("repo: %w", ErrRunNotFound)))
	assert.False(t, IsNotFoundError(ErrSchema))
}
