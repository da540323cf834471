package placement

import (
	"testing"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
)

func TestPGTime(t *testing.T) {
	at := NewTimeOfDay(14, 0)
	pt := pgTime(at)
	assert.True(t, pt.Valid)
	assert.Equal(t, int64(14*60*60*1_000_000), pt.Microseconds)
	assert.Equal(t, at, fromPGTime(pt))

	// Seconds stored by hand are dropped.
	assert.Equal(t, NewTimeOfDay(9, 15), fromPGTime(pgtype.Time{Microseconds: (9*3600 + 15*60 + 30) * 1_000_000, Valid: true}))
}
