package placement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/englishschool/internal/internaltypes"
	"go.uber.org/zap"
)

// Request is a booking submission as it arrives from the form.
type Request struct {
	UserID   int64  `form:"-"`
	FullName string `form:"full_name" validate:"required,max=100"`
	Phone    string `form:"phone" validate:"required,max=15"`
	Level    string `form:"level" validate:"required"`
	Date     string `form:"date" validate:"required"`
	Time     string `form:"time" validate:"required"`
}

// Notifier is told about every stored reservation.
type Notifier interface {
	ReservationCreated(ctx context.Context, r Reservation) error
}

type Options struct {
	SlotStart TimeOfDay
	SlotEnd   TimeOfDay
	SlotStep  time.Duration
	Rules     Rules
	// HandlerID is the staff account new bookings are routed to; 0 leaves
	// them unassigned.
	HandlerID int64
}

type Service struct {
	store    Store
	opts     Options
	notifier Notifier
	logger   *zap.Logger
}

func NewService(store Store, opts Options, notifier Notifier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, opts: opts, notifier: notifier, logger: logger}
}

// Slots is the bookable catalog for the configured operating window.
func (s *Service) Slots() []TimeOfDay {
	return Catalog(s.opts.SlotStart, s.opts.SlotEnd, s.opts.SlotStep)
}

func (s *Service) Rules() Rules { return s.opts.Rules }

func (s *Service) HandlerID() int64 { return s.opts.HandlerID }

// Book validates a submission and stores it. Every rejection the requester
// can fix comes back as an *internaltypes.ValidationError.
func (s *Service) Book(ctx context.Context, req Request) (Reservation, error) {
	if req.UserID <= 0 {
		return Reservation{}, internaltypes.ErrUnauthorized
	}
	req = trimRequest(req)

	r, err := s.parse(req)
	if err != nil {
		return Reservation{}, err
	}

	if err := s.opts.Rules.Check(ctx, s.store, r.Date, r.Time); err != nil {
		s.logger.Debug("reservation rejected",
			zap.Int64("user_id", req.UserID),
			zap.String("date", req.Date),
			zap.String("time", req.Time),
			zap.Error(err),
		)
		return Reservation{}, err
	}

	if s.opts.HandlerID > 0 {
		h := s.opts.HandlerID
		r.HandlerID = &h
	}

	if err := s.store.Create(ctx, &r); err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.logger.Info("slot taken by concurrent booking",
				zap.String("date", req.Date),
				zap.String("time", req.Time),
			)
			return Reservation{}, slotTakenError()
		}
		return Reservation{}, fmt.Errorf("create reservation: %w", err)
	}

	s.logger.Info("reservation created",
		zap.Int64("reservation_id", r.ID),
		zap.Int64("user_id", r.UserID),
		zap.String("date", r.Date.Format(DateLayout)),
		zap.Stringer("time", r.Time),
		zap.String("level", string(r.Level)),
	)

	if s.notifier != nil {
		if err := s.notifier.ReservationCreated(ctx, r); err != nil {
			s.logger.Warn("notify handler failed", zap.Int64("reservation_id", r.ID), zap.Error(err))
		}
	}
	return r, nil
}

func (s *Service) parse(req Request) (Reservation, error) {
	fields := map[string]string{}
	if err := internaltypes.ValidateForm(req); err != nil {
		var verr *internaltypes.ValidationError
		if !errors.As(err, &verr) {
			return Reservation{}, err
		}
		for k, v := range verr.Fields {
			fields[k] = v
		}
	}

	r := Reservation{UserID: req.UserID, FullName: req.FullName, Phone: req.Phone}

	if _, bad := fields["level"]; !bad {
		lvl, ok := ParseLevel(req.Level)
		if !ok {
			fields["level"] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", req.Level)
		}
		r.Level = lvl
	}
	if _, bad := fields["date"]; !bad {
		d, err := ParseDate(req.Date)
		if err != nil {
			fields["date"] = "Enter a valid date."
		}
		r.Date = d
	}
	if _, bad := fields["time"]; !bad {
		t, err := ParseTimeOfDay(req.Time)
		if err != nil || !contains(s.Slots(), t) {
			fields["time"] = fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", req.Time)
		}
		r.Time = t
	}

	if len(fields) > 0 {
		return Reservation{}, &internaltypes.ValidationError{Fields: fields, Err: internaltypes.ErrInvalidInput}
	}
	return r, nil
}

// ReservedTimes lists the booked times on rawDate as "HH:MM", in booking
// order. A blank or malformed date yields an empty list.
func (s *Service) ReservedTimes(ctx context.Context, rawDate string) ([]string, error) {
	out := []string{}
	if strings.TrimSpace(rawDate) == "" {
		return out, nil
	}
	date, err := ParseDate(rawDate)
	if err != nil {
		return out, nil
	}
	times, err := s.store.ReservedTimes(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("reserved times: %w", err)
	}
	for _, t := range times {
		out = append(out, t.String())
	}
	return out, nil
}

// HandlerInbox returns the handler's reservations, newest date first, then
// marks the returned ones seen. Rows stored after the listing stay unseen.
// The returned rows keep the flag as it was before.
func (s *Service) HandlerInbox(ctx context.Context, handlerID int64) ([]Reservation, error) {
	rs, err := s.store.ListByHandler(ctx, handlerID)
	if err != nil {
		return nil, fmt.Errorf("list reservations: %w", err)
	}
	var unseen []int64
	for _, r := range rs {
		if !r.Seen {
			unseen = append(unseen, r.ID)
		}
	}
	if len(unseen) == 0 {
		return rs, nil
	}
	n, err := s.store.MarkSeen(ctx, handlerID, unseen)
	if err != nil {
		return nil, fmt.Errorf("mark seen: %w", err)
	}
	if n > 0 {
		s.logger.Info("inbox marked seen", zap.Int64("handler_id", handlerID), zap.Int64("count", n))
	}
	return rs, nil
}

func (s *Service) UnseenCount(ctx context.Context, handlerID int64) (int, error) {
	return s.store.CountUnseen(ctx, handlerID)
}

// Inbox lists the handler's reservations without touching the seen flag.
func (s *Service) Inbox(ctx context.Context, handlerID int64) ([]Reservation, error) {
	return s.store.ListByHandler(ctx, handlerID)
}

func trimRequest(r Request) Request {
	r.FullName = strings.TrimSpace(r.FullName)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Level = strings.TrimSpace(r.Level)
	r.Date = strings.TrimSpace(r.Date)
	r.Time = strings.TrimSpace(r.Time)
	return r
}
