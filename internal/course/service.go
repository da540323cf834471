package course

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/internaltypes"
	"github.com/example/englishschool/internal/placement"
	"go.uber.org/zap"
)

// Users resolves the accounts courses refer to.
type Users interface {
	GetUser(ctx context.Context, id int64) (auth.User, error)
	GetUserByUsername(ctx context.Context, username string) (auth.User, error)
}

// CourseForm is a new course as submitted by a teacher.
type CourseForm struct {
	Title         string `form:"title" validate:"required,max=100"`
	RequiredLevel string `form:"required_level" validate:"required"`
	Description   string `form:"description" validate:"max=2000"`
	ClassDays     string `form:"class_days" validate:"required"`
	ClassTime     string `form:"class_time" validate:"required"`
	JoinLink      string `form:"join_link" validate:"omitempty,url"`
}

// RequestForm is a student's application to join a course.
type RequestForm struct {
	FullName string `form:"full_name" validate:"required,max=100"`
	Age      string `form:"age" validate:"required"`
	Email    string `form:"email" validate:"required,email"`
	Phone    string `form:"phone" validate:"required,max=20"`
	Message  string `form:"message" validate:"max=1000"`
}

type Service struct {
	store  Store
	users  Users
	logger *zap.Logger
}

func NewService(store Store, users Users, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, users: users, logger: logger}
}

func (s *Service) CreateCourse(ctx context.Context, teacherID int64, f CourseForm) (Course, error) {
	if _, err := s.requireRole(ctx, teacherID, auth.RoleTeacher); err != nil {
		return Course{}, err
	}
	f.Title = strings.TrimSpace(f.Title)
	f.JoinLink = strings.TrimSpace(f.JoinLink)

	fields := map[string]string{}
	if err := collect(internaltypes.ValidateForm(f), fields); err != nil {
		return Course{}, err
	}
	lvl, ok := placement.ParseLevel(f.RequiredLevel)
	if _, bad := fields["required_level"]; !bad && !ok {
		fields["required_level"] = invalidChoice(f.RequiredLevel)
	}
	if _, bad := fields["class_days"]; !bad && !slices.Contains(ClassDays, f.ClassDays) {
		fields["class_days"] = invalidChoice(f.ClassDays)
	}
	if _, bad := fields["class_time"]; !bad && !slices.Contains(ClassTimes, f.ClassTime) {
		fields["class_time"] = invalidChoice(f.ClassTime)
	}
	if len(fields) > 0 {
		return Course{}, &internaltypes.ValidationError{Fields: fields, Err: internaltypes.ErrInvalidInput}
	}

	c := Course{
		Title:         f.Title,
		RequiredLevel: lvl,
		Description:   strings.TrimSpace(f.Description),
		ClassDays:     f.ClassDays,
		ClassTime:     f.ClassTime,
		TeacherID:     teacherID,
		JoinLink:      f.JoinLink,
	}
	if c.JoinLink == "" {
		c.JoinLink = "#"
	}
	if err := s.store.CreateCourse(ctx, &c); err != nil {
		return Course{}, fmt.Errorf("create course: %w", err)
	}
	s.logger.Info("course created", zap.Int64("course_id", c.ID), zap.Int64("teacher_id", teacherID))
	return c, nil
}

func (s *Service) Courses(ctx context.Context) ([]Course, error) {
	return s.store.ListCourses(ctx)
}

func (s *Service) TeacherCourses(ctx context.Context, teacherID int64) ([]Course, error) {
	return s.store.ListByTeacher(ctx, teacherID)
}

// CourseDetail returns the course with its enrolled students.
func (s *Service) CourseDetail(ctx context.Context, courseID int64) (Course, []Enrollment, error) {
	c, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, nil, err
	}
	es, err := s.store.CourseEnrollments(ctx, courseID)
	if err != nil {
		return Course{}, nil, fmt.Errorf("list enrollments: %w", err)
	}
	return c, es, nil
}

// Enroll adds the student named username to the teacher's course. Adding a
// student twice is not an error.
func (s *Service) Enroll(ctx context.Context, teacherID, courseID int64, username string) (bool, error) {
	c, err := s.ownedCourse(ctx, teacherID, courseID)
	if err != nil {
		return false, err
	}
	u, err := s.users.GetUserByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, internaltypes.ErrNotFound) || (err == nil && u.Role != auth.RoleStudent) {
		return false, internaltypes.NewValidationError(internaltypes.ErrInvalidInput, "username", "No student with that username.")
	}
	if err != nil {
		return false, fmt.Errorf("get student: %w", err)
	}
	created, err := s.store.Enroll(ctx, c.ID, u.ID)
	if err != nil {
		return false, fmt.Errorf("enroll: %w", err)
	}
	if created {
		s.logger.Info("student enrolled", zap.Int64("course_id", c.ID), zap.Int64("student_id", u.ID))
	}
	return created, nil
}

// SetGrade records a grade for an enrolled student. raw must be a whole
// number from 0 to 100; only the course teacher may set it.
func (s *Service) SetGrade(ctx context.Context, teacherID, courseID, studentID int64, raw string) error {
	c, err := s.ownedCourse(ctx, teacherID, courseID)
	if err != nil {
		return err
	}
	grade, err := ParseGrade(raw)
	if err != nil {
		return err
	}
	if err := s.store.SetGrade(ctx, c.ID, studentID, grade); err != nil {
		if errors.Is(err, internaltypes.ErrNotFound) {
			return err
		}
		return fmt.Errorf("set grade: %w", err)
	}
	s.logger.Info("grade set",
		zap.Int64("course_id", c.ID),
		zap.Int64("student_id", studentID),
		zap.Int("grade", grade),
	)
	return nil
}

// ParseGrade accepts a whole number from 0 to 100.
func ParseGrade(raw string) (int, error) {
	g, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || g < 0 || g > 100 {
		return 0, internaltypes.NewValidationError(internaltypes.ErrInvalidInput, "grade", "Enter a whole number from 0 to 100.")
	}
	return g, nil
}

// RequestEnrollment stores a student's application to join a course. A
// second application for the same course returns ErrAlreadyRequested.
func (s *Service) RequestEnrollment(ctx context.Context, studentID, courseID int64, f RequestForm) (EnrollmentRequest, error) {
	if _, err := s.requireRole(ctx, studentID, auth.RoleStudent); err != nil {
		return EnrollmentRequest{}, err
	}
	c, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return EnrollmentRequest{}, err
	}
	dup, err := s.store.HasRequest(ctx, courseID, studentID)
	if err != nil {
		return EnrollmentRequest{}, fmt.Errorf("check request: %w", err)
	}
	if dup {
		return EnrollmentRequest{}, ErrAlreadyRequested
	}

	f = trimRequestForm(f)
	fields := map[string]string{}
	if err := collect(internaltypes.ValidateForm(f), fields); err != nil {
		return EnrollmentRequest{}, err
	}
	age, convErr := strconv.Atoi(f.Age)
	if _, bad := fields["age"]; !bad && (convErr != nil || age < 1 || age > 120) {
		fields["age"] = "Enter a valid age."
	}
	if len(fields) > 0 {
		return EnrollmentRequest{}, &internaltypes.ValidationError{Fields: fields, Err: internaltypes.ErrInvalidInput}
	}

	r := EnrollmentRequest{
		CourseID:    c.ID,
		StudentID:   studentID,
		CourseTitle: c.Title,
		FullName:    f.FullName,
		Age:         age,
		Email:       f.Email,
		Phone:       f.Phone,
		Message:     f.Message,
	}
	if err := s.store.CreateRequest(ctx, &r); err != nil {
		if errors.Is(err, ErrAlreadyRequested) {
			return EnrollmentRequest{}, err
		}
		return EnrollmentRequest{}, fmt.Errorf("create request: %w", err)
	}
	s.logger.Info("enrollment requested", zap.Int64("request_id", r.ID), zap.Int64("course_id", c.ID))
	return r, nil
}

func (s *Service) HasRequested(ctx context.Context, studentID, courseID int64) (bool, error) {
	return s.store.HasRequest(ctx, courseID, studentID)
}

// TeacherRequests returns the requests for the teacher's courses and marks
// the returned ones seen. The returned rows keep the flag as it was before.
func (s *Service) TeacherRequests(ctx context.Context, teacherID int64) ([]EnrollmentRequest, error) {
	rs, err := s.store.TeacherRequests(ctx, teacherID)
	if err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
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
	n, err := s.store.MarkRequestsSeen(ctx, teacherID, unseen)
	if err != nil {
		return nil, fmt.Errorf("mark requests seen: %w", err)
	}
	if n > 0 {
		s.logger.Info("enrollment requests marked seen", zap.Int64("teacher_id", teacherID), zap.Int64("count", n))
	}
	return rs, nil
}

func (s *Service) UnseenRequests(ctx context.Context, teacherID int64) (int, error) {
	return s.store.CountUnseenRequests(ctx, teacherID)
}

func (s *Service) StudentDashboard(ctx context.Context, studentID int64) (Dashboard, error) {
	es, err := s.store.StudentEnrollments(ctx, studentID)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list enrollments: %w", err)
	}
	return Split(es), nil
}

func (s *Service) ownedCourse(ctx context.Context, teacherID, courseID int64) (Course, error) {
	c, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, err
	}
	if c.TeacherID != teacherID {
		return Course{}, ErrNotCourseTeacher
	}
	return c, nil
}

func (s *Service) requireRole(ctx context.Context, userID int64, role auth.Role) (auth.User, error) {
	if userID <= 0 {
		return auth.User{}, internaltypes.ErrUnauthorized
	}
	u, err := s.users.GetUser(ctx, userID)
	if errors.Is(err, internaltypes.ErrNotFound) {
		return auth.User{}, internaltypes.ErrUnauthorized
	}
	if err != nil {
		return auth.User{}, fmt.Errorf("get user: %w", err)
	}
	if u.Role != role {
		return auth.User{}, internaltypes.ErrUnauthorized
	}
	return u, nil
}

// collect copies field messages from a validation failure into fields and
// returns any other error unchanged.
func collect(err error, fields map[string]string) error {
	if err == nil {
		return nil
	}
	var verr *internaltypes.ValidationError
	if !errors.As(err, &verr) {
		return err
	}
	for k, v := range verr.Fields {
		fields[k] = v
	}
	return nil
}

func invalidChoice(v string) string {
	return fmt.Sprintf("Select a valid choice. %s is not one of the available choices.", v)
}

func trimRequestForm(f RequestForm) RequestForm {
	f.FullName = strings.TrimSpace(f.FullName)
	f.Age = strings.TrimSpace(f.Age)
	f.Email = strings.TrimSpace(f.Email)
	f.Phone = strings.TrimSpace(f.Phone)
	f.Message = strings.TrimSpace(f.Message)
	return f
}
