// Package course keeps the school's courses, the students enrolled in them
// with their grades, and the enrollment requests students send to teachers.
package course

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/englishschool/internal/internaltypes"
	"github.com/example/englishschool/internal/placement"
)

// PassMark is the lowest grade that counts as a pass.
const PassMark = 60

var (
	ErrAlreadyRequested = errors.New("course: enrollment already requested")
	ErrNotCourseTeacher = fmt.Errorf("%w: not the course teacher", internaltypes.ErrUnauthorized)
)

// ClassDays and ClassTimes are the schedule choices a course can carry.
var (
	ClassDays  = []string{"Monday-Wednesday", "Tuesday-Thursday", "Only Fridays"}
	ClassTimes = []string{"8-10 am", "10-12 am", "1-3 pm", "3-5 pm", "5-7 pm", "8-12 am"}
)

type Course struct {
	ID            int64
	Title         string
	RequiredLevel placement.Level
	Description   string
	ClassDays     string
	ClassTime     string
	TeacherID     int64
	TeacherName   string
	JoinLink      string
	CreatedAt     time.Time
}

// Enrollment ties a student to a course. Grade is nil until the teacher
// sets one.
type Enrollment struct {
	ID          int64
	CourseID    int64
	StudentID   int64
	CourseTitle string
	StudentName string
	Grade       *int
	CreatedAt   time.Time
}

func (e Enrollment) Standing() Standing { return StandingOf(e.Grade) }

type EnrollmentRequest struct {
	ID          int64
	CourseID    int64
	StudentID   int64
	CourseTitle string
	StudentName string
	FullName    string
	Age         int
	Email       string
	Phone       string
	Message     string
	Seen        bool
	CreatedAt   time.Time
}

type Standing string

const (
	InProgress Standing = "in progress"
	Passed     Standing = "passed"
	Failed     Standing = "failed"
)

func StandingOf(grade *int) Standing {
	switch {
	case grade == nil:
		return InProgress
	case *grade >= PassMark:
		return Passed
	default:
		return Failed
	}
}

// Dashboard is a student's enrollments bucketed by standing.
type Dashboard struct {
	Passed     []Enrollment
	Failed     []Enrollment
	InProgress []Enrollment
}

func (d Dashboard) Empty() bool {
	return len(d.Passed)+len(d.Failed)+len(d.InProgress) == 0
}

// Split buckets enrollments by standing, keeping their order.
func Split(es []Enrollment) Dashboard {
	var d Dashboard
	for _, e := range es {
		switch e.Standing() {
		case Passed:
			d.Passed = append(d.Passed, e)
		case Failed:
			d.Failed = append(d.Failed, e)
		default:
			d.InProgress = append(d.InProgress, e)
		}
	}
	return d
}

// Store persists courses, enrollments and enrollment requests. Lookups of
// missing rows return internaltypes.ErrNotFound.
type Store interface {
	CreateCourse(ctx context.Context, c *Course) error
	GetCourse(ctx context.Context, id int64) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]Course, error)

	// Enroll reports whether a new enrollment was stored; an existing one
	// is left as is.
	Enroll(ctx context.Context, courseID, studentID int64) (bool, error)
	CourseEnrollments(ctx context.Context, courseID int64) ([]Enrollment, error)
	StudentEnrollments(ctx context.Context, studentID int64) ([]Enrollment, error)
	SetGrade(ctx context.Context, courseID, studentID int64, grade int) error

	// CreateRequest returns ErrAlreadyRequested when the student already
	// asked to join the course.
	CreateRequest(ctx context.Context, r *EnrollmentRequest) error
	HasRequest(ctx context.Context, courseID, studentID int64) (bool, error)
	// TeacherRequests lists requests for the teacher's courses, newest first.
	TeacherRequests(ctx context.Context, teacherID int64) ([]EnrollmentRequest, error)
	MarkRequestsSeen(ctx context.Context, teacherID int64, ids []int64) (int64, error)
	CountUnseenRequests(ctx context.Context, teacherID int64) (int, error)
}
