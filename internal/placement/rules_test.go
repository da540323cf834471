package placement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/englishschool/internal/internaltypes"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSlots struct {
	taken bool
	err   error
	calls int
}

func (f *fakeSlots) SlotTaken(context.Context, time.Time, TimeOfDay) (bool, error) {
	f.calls++
	return f.taken, f.err
}

// Wednesday 2026-10-21, mid-morning.
func fixedNow() time.Time { return time.Date(2026, 10, 21, 9, 30, 0, 0, time.UTC) }

func weekendRules() Rules {
	return Rules{Disallowed: []time.Weekday{time.Saturday, time.Sunday}, Location: time.UTC, Now: fixedNow}
}

func day(s string) time.Time {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestRulesCheck(t *testing.T) {
	at := NewTimeOfDay(14, 0)
	tests := []struct {
		name      string
		date      string
		taken     bool
		wantErr   error
		wantField string
		wantMsg   string
		wantCalls int
	}{
		{name: "open weekday", date: "2026-10-27", wantCalls: 1},
		{name: "today counts as bookable", date: "2026-10-21", wantCalls: 1},
		{name: "saturday", date: "2026-10-24", wantErr: ErrDisallowedWeekday, wantField: "date",
			wantMsg: "Booking on Saturdays and Sundays is not allowed."},
		{name: "saturday already booked", date: "2026-10-31", taken: true, wantErr: ErrDisallowedWeekday, wantField: "date",
			wantMsg: "Booking on Saturdays and Sundays is not allowed."},
		{name: "past weekend reports weekday first", date: "2026-10-18", wantErr: ErrDisallowedWeekday, wantField: "date"},
		{name: "yesterday", date: "2026-10-20", wantErr: ErrPastDate, wantField: "date", wantMsg: "Date cannot be in the past."},
		{name: "taken", date: "2026-10-27", taken: true, wantErr: ErrSlotTaken, wantField: "",
			wantMsg: "This time slot is already booked.", wantCalls: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots := &fakeSlots{taken: tt.taken}
			err := weekendRules().Check(context.Background(), slots, day(tt.date), at)
			assert.Equal(t, tt.wantCalls, slots.calls)
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tt.wantErr)
			var verr *internaltypes.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.wantField)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, verr.Fields[tt.wantField])
			}
		})
	}
}

func TestRulesCheckStoreError(t *testing.T) {
	boom := errors.New("connection reset")
	err := weekendRules().Check(context.Background(), &fakeSlots{err: boom}, day("2026-10-27"), NewTimeOfDay(9, 0))
	require.ErrorIs(t, err, boom)
	var verr *internaltypes.ValidationError
	assert.False(t, errors.As(err, &verr))
}

func TestRulesTodayUsesLocation(t *testing.T) {
	r := Rules{
		Location: time.FixedZone("UTC-5", -5*3600),
		Now:      func() time.Time { return time.Date(2026, 10, 21, 2, 0, 0, 0, time.UTC) },
	}
	assert.Equal(t, day("2026-10-20"), r.Today())
}

func TestWeekdayMessage(t *testing.T) {
	assert.Equal(t, "Booking on Fridays is not allowed.",
		Rules{Disallowed: []time.Weekday{time.Friday}}.WeekdayMessage())
	assert.Equal(t, "Booking on Fridays, Saturdays and Sundays is not allowed.",
		Rules{Disallowed: []time.Weekday{time.Friday, time.Saturday, time.Sunday}}.WeekdayMessage())
}
