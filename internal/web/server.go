package web

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"time"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/course"
	"github.com/example/englishschool/internal/placement"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

//go:embed templates/*.html static/*
var fs embed.FS

// UserStore is the account storage the handlers need.
type UserStore interface {
	auth.UserGetter
	Authenticate(ctx context.Context, username, password string) (int64, error)
}

type Server struct {
	Users        UserStore
	Sessions     *auth.Sessions
	Registration auth.Registration
	Placement    *placement.Service
	Courses      *course.Service
	Logger       *zap.Logger

	BaseURL string
}

type tmplData struct {
	Title string
	User  *auth.User

	Flash  string
	Errors map[string]string
	Form   map[string]string

	// placement form
	Slots       []string
	Levels      []placement.Level
	MinDate     string
	WeekdayNote string

	UnseenCount  int
	Reservations []placement.Reservation

	Courses     []course.Course
	Course      *course.Course
	Enrollments []course.Enrollment
	IsOwner     bool
	Requested   bool
	ClassDays   []string
	ClassTimes  []string

	UnseenRequests int
	Requests       []course.EnrollmentRequest
	Dashboard      course.Dashboard
}

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog(s.Logger))
	r.Use(middleware.Recoverer)

	r.Handle("/static/*", http.FileServer(http.FS(fs)))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	r.Get("/login", s.handleLoginForm)
	r.Post("/login", s.handleLogin)
	r.Get("/signup", s.handleSignupForm)
	r.Post("/signup", s.handleSignup)
	r.Get("/logout", s.handleLogout)
	r.Get("/get-reserved-times", s.handleReservedTimes)

	r.Group(func(r chi.Router) {
		r.Use(s.Sessions.RequireAuth)
		r.Use(s.Sessions.LoadUser(s.Users, s.Logger))

		r.Get("/", s.handleHome)
		r.Get("/placement-test", s.handlePlacementForm)
		r.Post("/placement-test", s.handlePlacementSubmit)
		r.Get("/reservation-success", s.handleReservationSuccess)

		r.Get("/courses", s.handleCourses)
		r.Get("/courses/{courseID}", s.handleCourse)
		r.Get("/courses/{courseID}/request", s.handleEnrollmentForm)
		r.Post("/courses/{courseID}/request", s.handleEnrollmentSubmit)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireTeacher)
			r.Get("/level-requests", s.handleLevelRequests)
			r.Get("/enrollment-requests", s.handleEnrollmentRequests)
			r.Post("/courses", s.handleCreateCourse)
			r.Post("/courses/{courseID}/students", s.handleEnrollStudent)
			r.Post("/courses/{courseID}/students/{studentID}/grade", s.handleSetGrade)
		})
	})

	return r
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	data := tmplData{Title: "Home", User: &u}
	if u.IsTeacher() {
		n, err := s.Placement.UnseenCount(r.Context(), u.ID)
		if err != nil {
			s.serverError(w, r, "count unseen reservations", err)
			return
		}
		data.UnseenCount = n
		if data.UnseenRequests, err = s.Courses.UnseenRequests(r.Context(), u.ID); err != nil {
			s.serverError(w, r, "count unseen enrollment requests", err)
			return
		}
		if data.Courses, err = s.Courses.TeacherCourses(r.Context(), u.ID); err != nil {
			s.serverError(w, r, "list teacher courses", err)
			return
		}
	} else {
		d, err := s.Courses.StudentDashboard(r.Context(), u.ID)
		if err != nil {
			s.serverError(w, r, "student dashboard", err)
			return
		}
		data.Dashboard = d
	}
	s.render(w, http.StatusOK, "templates/home.html", data)
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data tmplData) {
	t, err := template.New("").Funcs(funcs).ParseFS(fs,
		"templates/base.html",
		name,
	)
	if err != nil {
		http.Error(w, "template error: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		s.Logger.Error("render", zap.String("template", name), zap.Error(err))
	}
}

var funcs = template.FuncMap{
	"date":    func(t time.Time) string { return t.Format(placement.DateLayout) },
	"weekday": func(t time.Time) string { return t.Weekday().String() },
}

// serverError logs err and answers with a generic 500.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	s.Logger.Error(msg,
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

func Start(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	logger.Info("listening", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
