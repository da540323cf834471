// Package placementtest provides an in-memory placement.Store for tests.
package placementtest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/englishschool/internal/placement"
)

type MemStore struct {
	mu     sync.Mutex
	nextID int64
	rows   []placement.Reservation
}

func NewMemStore() *MemStore { return &MemStore{} }

func (s *MemStore) SlotTaken(_ context.Context, date time.Time, at placement.TimeOfDay) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.findLocked(date, at), nil
}

func (s *MemStore) Create(_ context.Context, r *placement.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findLocked(r.Date, r.Time) {
		return placement.ErrSlotTaken
	}
	s.nextID++
	r.ID = s.nextID
	r.Seen = false
	r.CreatedAt = time.Now().UTC()
	s.rows = append(s.rows, *r)
	return nil
}

func (s *MemStore) ReservedTimes(_ context.Context, date time.Time) ([]placement.TimeOfDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []placement.TimeOfDay
	for _, r := range s.rows {
		if r.Date.Equal(date) {
			out = append(out, r.Time)
		}
	}
	return out, nil
}

func (s *MemStore) ListByHandler(_ context.Context, handlerID int64) ([]placement.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []placement.Reservation
	for _, r := range s.rows {
		if r.HandlerID != nil && *r.HandlerID == handlerID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].Time > out[j].Time
	})
	return out, nil
}

func (s *MemStore) MarkSeen(_ context.Context, handlerID int64, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range s.rows {
		r := &s.rows[i]
		if r.HandlerID != nil && *r.HandlerID == handlerID && want[r.ID] && !r.Seen {
			r.Seen = true
			n++
		}
	}
	return n, nil
}

func (s *MemStore) CountUnseen(_ context.Context, handlerID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.rows {
		if r.HandlerID != nil && *r.HandlerID == handlerID && !r.Seen {
			n++
		}
	}
	return n, nil
}

// Len reports how many reservations are stored.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *MemStore) findLocked(date time.Time, at placement.TimeOfDay) bool {
	for _, r := range s.rows {
		if r.Date.Equal(date) && r.Time == at {
			return true
		}
	}
	return false
}

var _ placement.Store = (*MemStore)(nil)
