// Package coursetest provides an in-memory course.Store for tests.
package coursetest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/englishschool/internal/course"
	"github.com/example/englishschool/internal/internaltypes"
)

type MemStore struct {
	mu          sync.Mutex
	nextID      int64
	names       map[int64]string
	courses     []course.Course
	enrollments []course.Enrollment
	requests    []course.EnrollmentRequest
}

func NewMemStore() *MemStore { return &MemStore{names: map[int64]string{}} }

// SetName registers the username joined onto rows for userID.
func (s *MemStore) SetName(userID int64, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.names[userID] = name
}

func (s *MemStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *MemStore) CreateCourse(_ context.Context, c *course.Course) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.CreatedAt = time.Now().UTC()
	c.TeacherName = s.names[c.TeacherID]
	s.courses = append(s.courses, *c)
	return nil
}

func (s *MemStore) GetCourse(_ context.Context, id int64) (course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courseLocked(id)
	if !ok {
		return course.Course{}, internaltypes.ErrNotFound
	}
	return c, nil
}

func (s *MemStore) ListCourses(_ context.Context) ([]course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]course.Course(nil), s.courses...), nil
}

func (s *MemStore) ListByTeacher(_ context.Context, teacherID int64) ([]course.Course, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []course.Course
	for _, c := range s.courses {
		if c.TeacherID == teacherID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *MemStore) Enroll(_ context.Context, courseID, studentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.courseLocked(courseID)
	if !ok {
		return false, internaltypes.ErrNotFound
	}
	for _, e := range s.enrollments {
		if e.CourseID == courseID && e.StudentID == studentID {
			return false, nil
		}
	}
	s.enrollments = append(s.enrollments, course.Enrollment{
		ID:          s.id(),
		CourseID:    courseID,
		StudentID:   studentID,
		CourseTitle: c.Title,
		StudentName: s.names[studentID],
		CreatedAt:   time.Now().UTC(),
	})
	return true, nil
}

func (s *MemStore) CourseEnrollments(_ context.Context, courseID int64) ([]course.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []course.Enrollment
	for _, e := range s.enrollments {
		if e.CourseID == courseID {
			out = append(out, copyEnrollment(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StudentName < out[j].StudentName })
	return out, nil
}

func (s *MemStore) StudentEnrollments(_ context.Context, studentID int64) ([]course.Enrollment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []course.Enrollment
	for _, e := range s.enrollments {
		if e.StudentID == studentID {
			out = append(out, copyEnrollment(e))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CourseTitle < out[j].CourseTitle })
	return out, nil
}

func (s *MemStore) SetGrade(_ context.Context, courseID, studentID int64, grade int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.enrollments {
		e := &s.enrollments[i]
		if e.CourseID == courseID && e.StudentID == studentID {
			g := grade
			e.Grade = &g
			return nil
		}
	}
	return internaltypes.ErrNotFound
}

func (s *MemStore) CreateRequest(_ context.Context, r *course.EnrollmentRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.hasRequestLocked(r.CourseID, r.StudentID) {
		return course.ErrAlreadyRequested
	}
	r.ID = s.id()
	r.Seen = false
	r.CreatedAt = time.Now().UTC()
	r.StudentName = s.names[r.StudentID]
	if c, ok := s.courseLocked(r.CourseID); ok {
		r.CourseTitle = c.Title
	}
	s.requests = append(s.requests, *r)
	return nil
}

func (s *MemStore) HasRequest(_ context.Context, courseID, studentID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasRequestLocked(courseID, studentID), nil
}

func (s *MemStore) TeacherRequests(_ context.Context, teacherID int64) ([]course.EnrollmentRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []course.EnrollmentRequest
	for _, r := range s.requests {
		if s.teachesLocked(teacherID, r.CourseID) {
			out = append(out, r)
		}
	}
	// newest first; ids break ties between rows stored in the same instant
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *MemStore) MarkRequestsSeen(_ context.Context, teacherID int64, ids []int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	want := make(map[int64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	var n int64
	for i := range s.requests {
		r := &s.requests[i]
		if want[r.ID] && !r.Seen && s.teachesLocked(teacherID, r.CourseID) {
			r.Seen = true
			n++
		}
	}
	return n, nil
}

func (s *MemStore) CountUnseenRequests(_ context.Context, teacherID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, r := range s.requests {
		if !r.Seen && s.teachesLocked(teacherID, r.CourseID) {
			n++
		}
	}
	return n, nil
}

func (s *MemStore) courseLocked(id int64) (course.Course, bool) {
	for _, c := range s.courses {
		if c.ID == id {
			return c, true
		}
	}
	return course.Course{}, false
}

func (s *MemStore) teachesLocked(teacherID, courseID int64) bool {
	c, ok := s.courseLocked(courseID)
	return ok && c.TeacherID == teacherID
}

func (s *MemStore) hasRequestLocked(courseID, studentID int64) bool {
	for _, r := range s.requests {
		if r.CourseID == courseID && r.StudentID == studentID {
			return true
		}
	}
	return false
}

func copyEnrollment(e course.Enrollment) course.Enrollment {
	if e.Grade != nil {
		g := *e.Grade
		e.Grade = &g
	}
	return e
}
