package placement

import (
	"context"
	"errors"
	"time"
)

var (
	ErrDisallowedWeekday = errors.New("placement: weekday not bookable")
	ErrPastDate          = errors.New("placement: date in the past")
	ErrSlotTaken         = errors.New("placement: slot already booked")
)

// Reservation is one booked placement-test appointment.
type Reservation struct {
	ID        int64
	UserID    int64
	FullName  string
	Phone     string
	Level     Level
	Date      time.Time // calendar date, midnight UTC
	Time      TimeOfDay
	HandlerID *int64
	Seen      bool
	CreatedAt time.Time
}

type SlotChecker interface {
	SlotTaken(ctx context.Context, date time.Time, at TimeOfDay) (bool, error)
}

// Store persists reservations. Create must return ErrSlotTaken when the
// (date, time) pair is already stored, whatever the earlier checks said.
type Store interface {
	SlotChecker
	Create(ctx context.Context, r *Reservation) error
	ReservedTimes(ctx context.Context, date time.Time) ([]TimeOfDay, error)
	ListByHandler(ctx context.Context, handlerID int64) ([]Reservation, error)
	// MarkSeen flags the listed reservations of the handler as seen.
	MarkSeen(ctx context.Context, handlerID int64, ids []int64) (int64, error)
	CountUnseen(ctx context.Context, handlerID int64) (int, error)
}
