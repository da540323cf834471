package db

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestWrapNotFound(t *testing.T) {
	assert.NoError(t, WrapNotFound(nil))
	assert.ErrorIs(t, WrapNotFound(pgx.ErrNoRows), ErrNotFound)

	other := errors.New("boom")
	err := WrapNotFound(other)
	assert.ErrorIs(t, err, other)
	assert.False(t, IsNotFound(err))
	assert.True(t, IsNotFound(fmt.Errorf("lookup: %w", pgx.ErrNoRows)))
}

func TestIsUniqueViolation(t *testing.T) {
	slotErr := &pgconn.PgError{Code: "23505", ConstraintName: "placement_reservations_slot_key"}
	wrapped := fmt.Errorf("insert: %w", slotErr)

	assert.True(t, IsUniqueViolation(wrapped, ""))
	assert.True(t, IsUniqueViolation(wrapped, "placement_reservations_slot_key"))
	assert.False(t, IsUniqueViolation(wrapped, "users_username_key"))
	assert.False(t, IsUniqueViolation(&pgconn.PgError{Code: "23503"}, ""))
	assert.False(t, IsUniqueViolation(errors.New("23505"), ""))
}
