package web

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/course"
	"github.com/example/englishschool/internal/internaltypes"
	"github.com/example/englishschool/internal/placement"
	"github.com/go-chi/chi/v5"
)

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

// courseFailure answers errors the course handlers do not render a form for.
func (s *Server) courseFailure(w http.ResponseWriter, r *http.Request, msg string, err error) {
	switch {
	case errors.Is(err, internaltypes.ErrNotFound):
		http.NotFound(w, r)
	case errors.Is(err, internaltypes.ErrUnauthorized):
		http.Error(w, "forbidden", http.StatusForbidden)
	default:
		s.serverError(w, r, msg, err)
	}
}

func (s *Server) coursesData(u *auth.User) tmplData {
	return tmplData{
		Title:      "Courses",
		User:       u,
		Levels:     placement.Levels,
		ClassDays:  course.ClassDays,
		ClassTimes: course.ClassTimes,
		Form:       map[string]string{},
	}
}

func (s *Server) handleCourses(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	cs, err := s.Courses.Courses(r.Context())
	if err != nil {
		s.serverError(w, r, "list courses", err)
		return
	}
	data := s.coursesData(&u)
	data.Courses = cs
	s.render(w, http.StatusOK, "templates/courses.html", data)
}

func (s *Server) handleCreateCourse(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := course.CourseForm{
		Title:         r.FormValue("title"),
		RequiredLevel: r.FormValue("required_level"),
		Description:   r.FormValue("description"),
		ClassDays:     r.FormValue("class_days"),
		ClassTime:     r.FormValue("class_time"),
		JoinLink:      r.FormValue("join_link"),
	}

	c, err := s.Courses.CreateCourse(r.Context(), u.ID, f)
	var verr *internaltypes.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/courses/"+strconv.FormatInt(c.ID, 10), http.StatusFound)
	case errors.As(err, &verr):
		cs, lerr := s.Courses.Courses(r.Context())
		if lerr != nil {
			s.serverError(w, r, "list courses", lerr)
			return
		}
		data := s.coursesData(&u)
		data.Courses = cs
		data.Errors = verr.Fields
		data.Form = map[string]string{
			"title":          f.Title,
			"required_level": f.RequiredLevel,
			"description":    f.Description,
			"class_days":     f.ClassDays,
			"class_time":     f.ClassTime,
			"join_link":      f.JoinLink,
		}
		s.render(w, http.StatusOK, "templates/courses.html", data)
	default:
		s.courseFailure(w, r, "create course", err)
	}
}

// renderCourse shows the course page, with errs from a rejected teacher
// action when there is one.
func (s *Server) renderCourse(w http.ResponseWriter, r *http.Request, u *auth.User, courseID int64, errs map[string]string) {
	c, es, err := s.Courses.CourseDetail(r.Context(), courseID)
	if err != nil {
		s.courseFailure(w, r, "course detail", err)
		return
	}
	data := tmplData{
		Title:       c.Title,
		User:        u,
		Course:      &c,
		Enrollments: es,
		IsOwner:     c.TeacherID == u.ID,
		Errors:      errs,
	}
	if !u.IsTeacher() {
		data.Requested, err = s.Courses.HasRequested(r.Context(), u.ID, c.ID)
		if err != nil {
			s.serverError(w, r, "check enrollment request", err)
			return
		}
	}
	s.render(w, http.StatusOK, "templates/course.html", data)
}

func (s *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	id, ok := idParam(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	s.renderCourse(w, r, &u, id, nil)
}

func (s *Server) handleEnrollStudent(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	id, ok := idParam(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err := s.Courses.Enroll(r.Context(), u.ID, id, r.FormValue("username"))
	var verr *internaltypes.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/courses/"+strconv.FormatInt(id, 10), http.StatusFound)
	case errors.As(err, &verr):
		s.renderCourse(w, r, &u, id, verr.Fields)
	default:
		s.courseFailure(w, r, "enroll student", err)
	}
}

func (s *Server) handleSetGrade(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	id, ok := idParam(r, "courseID")
	studentID, ok2 := idParam(r, "studentID")
	if !ok || !ok2 {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := s.Courses.SetGrade(r.Context(), u.ID, id, studentID, r.FormValue("grade"))
	var verr *internaltypes.ValidationError
	switch {
	case err == nil:
		http.Redirect(w, r, "/courses/"+strconv.FormatInt(id, 10), http.StatusFound)
	case errors.As(err, &verr):
		s.renderCourse(w, r, &u, id, verr.Fields)
	default:
		s.courseFailure(w, r, "set grade", err)
	}
}

func (s *Server) enrollmentData(r *http.Request, u *auth.User) (tmplData, bool, error) {
	id, ok := idParam(r, "courseID")
	if !ok {
		return tmplData{}, false, internaltypes.ErrNotFound
	}
	c, _, err := s.Courses.CourseDetail(r.Context(), id)
	if err != nil {
		return tmplData{}, false, err
	}
	requested, err := s.Courses.HasRequested(r.Context(), u.ID, id)
	if err != nil {
		return tmplData{}, false, err
	}
	return tmplData{Title: "Join " + c.Title, User: u, Course: &c, Form: map[string]string{}}, requested, nil
}

func (s *Server) handleEnrollmentForm(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if u.IsTeacher() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	data, requested, err := s.enrollmentData(r, &u)
	if err != nil {
		s.courseFailure(w, r, "enrollment form", err)
		return
	}
	if requested {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "templates/enrollment_request.html", data)
}

func (s *Server) handleEnrollmentSubmit(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	if u.IsTeacher() {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	id, ok := idParam(r, "courseID")
	if !ok {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	f := course.RequestForm{
		FullName: r.FormValue("full_name"),
		Age:      r.FormValue("age"),
		Email:    r.FormValue("email"),
		Phone:    r.FormValue("phone"),
		Message:  r.FormValue("message"),
	}

	_, err := s.Courses.RequestEnrollment(r.Context(), u.ID, id, f)
	var verr *internaltypes.ValidationError
	switch {
	case err == nil, errors.Is(err, course.ErrAlreadyRequested):
		http.Redirect(w, r, "/", http.StatusFound)
	case errors.As(err, &verr):
		data, _, derr := s.enrollmentData(r, &u)
		if derr != nil {
			s.courseFailure(w, r, "enrollment form", derr)
			return
		}
		data.Errors = verr.Fields
		data.Form = map[string]string{
			"full_name": f.FullName,
			"age":       f.Age,
			"email":     f.Email,
			"phone":     f.Phone,
			"message":   f.Message,
		}
		s.render(w, http.StatusOK, "templates/enrollment_request.html", data)
	default:
		s.courseFailure(w, r, "request enrollment", err)
	}
}

func (s *Server) handleEnrollmentRequests(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())
	rs, err := s.Courses.TeacherRequests(r.Context(), u.ID)
	if err != nil {
		s.serverError(w, r, "enrollment requests", err)
		return
	}
	s.render(w, http.StatusOK, "templates/enrollment_requests.html", tmplData{
		Title:    "Enrollment requests",
		User:     &u,
		Requests: rs,
	})
}
