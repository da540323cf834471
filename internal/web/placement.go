package web

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/internaltypes"
	"github.com/example/englishschool/internal/placement"
	"go.uber.org/zap"
)

func (s *Server) placementData(u *auth.User) tmplData {
	slots := s.Placement.Slots()
	labels := make([]string, len(slots))
	for i, t := range slots {
		labels[i] = t.String()
	}
	rules := s.Placement.Rules()
	data := tmplData{
		Title:   "Placement test",
		User:    u,
		Slots:   labels,
		Levels:  placement.Levels,
		MinDate: rules.Today().Format(placement.DateLayout),
	}
	if len(rules.Disallowed) > 0 {
		data.WeekdayNote = rules.WeekdayMessage()
	}
	return data
}

func (s *Server) handlePlacementForm(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	data := s.placementData(&u)
	data.Form = map[string]string{}
	s.render(w, http.StatusOK, "templates/placement_test.html", data)
}

func (s *Server) handlePlacementSubmit(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := placement.Request{
		UserID:   u.ID,
		FullName: r.FormValue("full_name"),
		Phone:    r.FormValue("phone"),
		Level:    r.FormValue("level"),
		Date:     r.FormValue("date"),
		Time:     r.FormValue("time"),
	}

	_, err := s.Placement.Book(r.Context(), req)
	var verr *internaltypes.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/reservation-success", http.StatusFound)
	case errors.As(err, &verr):
		data := s.placementData(&u)
		data.Errors = verr.Fields
		data.Form = map[string]string{
			"full_name": req.FullName,
			"phone":     req.Phone,
			"level":     req.Level,
			"date":      req.Date,
			"time":      req.Time,
		}
		s.render(w, http.StatusOK, "templates/placement_test.html", data)
	case errors.Is(err, internaltypes.ErrUnauthorized):
		http.Redirect(w, r, "/login", http.StatusFound)
	default:
		s.serverError(w, r, "book placement test", err)
	}
}

func (s *Server) handleReservationSuccess(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	s.render(w, http.StatusOK, "templates/reservation_success.html", tmplData{Title: "Reservation confirmed", User: &u})
}

type reservedTimesResponse struct {
	ReservedTimes []string `json:"reserved_times"`
}

func (s *Server) handleReservedTimes(w http.ResponseWriter, r *http.Request) {
	times, err := s.Placement.ReservedTimes(r.Context(), r.URL.Query().Get("date"))
	if err != nil {
		s.serverError(w, r, "reserved times", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(reservedTimesResponse{ReservedTimes: times}); err != nil {
		s.Logger.Warn("write reserved times", zap.Error(err))
	}
}

func (s *Server) handleLevelRequests(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	rs, err := s.Placement.HandlerInbox(r.Context(), u.ID)
	if err != nil {
		s.serverError(w, r, "handler inbox", err)
		return
	}
	s.render(w, http.StatusOK, "templates/level_requests.html", tmplData{
		Title:        "Level requests",
		User:         &u,
		Reservations: rs,
	})
}
