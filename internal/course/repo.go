package course

import (
	"context"
	"fmt"

	"github.com/example/englishschool/internal/db"
	"github.com/example/englishschool/internal/placement"
)

const requestConstraint = "enrollment_requests_course_student_key"

const courseColumns = `c.id,c.title,c.required_level,c.description,c.class_days,c.class_time,c.teacher_id,u.username,c.join_link,c.created_at`

const enrollmentColumns = `e.id,e.course_id,e.student_id,c.title,u.username,e.grade,e.created_at`

const requestColumns = `r.id,r.course_id,r.student_id,c.title,u.username,r.full_name,r.age,r.email,r.phone,r.message,r.is_seen,r.created_at`

// Repo is the Postgres Store.
type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

func (r *Repo) CreateCourse(ctx context.Context, c *Course) error {
	err := r.db.QueryRow(ctx, `
INSERT INTO courses(title,required_level,description,class_days,class_time,teacher_id,join_link)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id,created_at`,
		c.Title, string(c.RequiredLevel), c.Description, c.ClassDays, c.ClassTime, c.TeacherID, c.JoinLink,
	).Scan(&c.ID, &c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert course: %w", err)
	}
	return nil
}

func (r *Repo) GetCourse(ctx context.Context, id int64) (Course, error) {
	c, err := scanCourse(r.db.QueryRow(ctx, `
SELECT `+courseColumns+`
FROM courses c JOIN users u ON u.id=c.teacher_id
WHERE c.id=$1`, id))
	if err != nil {
		return Course{}, db.WrapNotFound(err)
	}
	return c, nil
}

func (r *Repo) ListCourses(ctx context.Context) ([]Course, error) {
	return r.listCourses(ctx, `
SELECT `+courseColumns+`
FROM courses c JOIN users u ON u.id=c.teacher_id
ORDER BY c.id`)
}

func (r *Repo) ListByTeacher(ctx context.Context, teacherID int64) ([]Course, error) {
	return r.listCourses(ctx, `
SELECT `+courseColumns+`
FROM courses c JOIN users u ON u.id=c.teacher_id
WHERE c.teacher_id=$1
ORDER BY c.id`, teacherID)
}

func (r *Repo) listCourses(ctx context.Context, sql string, args ...any) ([]Course, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Course
	for rows.Next() {
		c, err := scanCourse(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *Repo) Enroll(ctx context.Context, courseID, studentID int64) (bool, error) {
	n, err := r.db.ExecAffected(ctx, `
INSERT INTO enrollments(course_id,student_id) VALUES ($1,$2)
ON CONFLICT (course_id,student_id) DO NOTHING`, courseID, studentID)
	return n == 1, err
}

func (r *Repo) CourseEnrollments(ctx context.Context, courseID int64) ([]Enrollment, error) {
	return r.listEnrollments(ctx, `
SELECT `+enrollmentColumns+`
FROM enrollments e
JOIN courses c ON c.id=e.course_id
JOIN users u ON u.id=e.student_id
WHERE e.course_id=$1
ORDER BY u.username`, courseID)
}

func (r *Repo) StudentEnrollments(ctx context.Context, studentID int64) ([]Enrollment, error) {
	return r.listEnrollments(ctx, `
SELECT `+enrollmentColumns+`
FROM enrollments e
JOIN courses c ON c.id=e.course_id
JOIN users u ON u.id=e.student_id
WHERE e.student_id=$1
ORDER BY c.title, e.id`, studentID)
}

func (r *Repo) listEnrollments(ctx context.Context, sql string, args ...any) ([]Enrollment, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Enrollment
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.CourseID, &e.StudentID, &e.CourseTitle, &e.StudentName, &e.Grade, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *Repo) SetGrade(ctx context.Context, courseID, studentID int64, grade int) error {
	n, err := r.db.ExecAffected(ctx, `
UPDATE enrollments SET grade=$3 WHERE course_id=$1 AND student_id=$2`, courseID, studentID, grade)
	if err != nil {
		return err
	}
	if n == 0 {
		return db.ErrNotFound
	}
	return nil
}

func (r *Repo) CreateRequest(ctx context.Context, req *EnrollmentRequest) error {
	err := r.db.QueryRow(ctx, `
INSERT INTO enrollment_requests(course_id,student_id,full_name,age,email,phone,message)
VALUES ($1,$2,$3,$4,$5,$6,$7)
RETURNING id,is_seen,created_at`,
		req.CourseID, req.StudentID, req.FullName, req.Age, req.Email, req.Phone, req.Message,
	).Scan(&req.ID, &req.Seen, &req.CreatedAt)
	if db.IsUniqueViolation(err, requestConstraint) {
		return ErrAlreadyRequested
	}
	if err != nil {
		return fmt.Errorf("insert enrollment request: %w", err)
	}
	return nil
}

func (r *Repo) HasRequest(ctx context.Context, courseID, studentID int64) (bool, error) {
	var ok bool
	err := r.db.QueryRow(ctx, `
SELECT EXISTS(SELECT 1 FROM enrollment_requests WHERE course_id=$1 AND student_id=$2)`,
		courseID, studentID).Scan(&ok)
	return ok, err
}

func (r *Repo) TeacherRequests(ctx context.Context, teacherID int64) ([]EnrollmentRequest, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+requestColumns+`
FROM enrollment_requests r
JOIN courses c ON c.id=r.course_id
JOIN users u ON u.id=r.student_id
WHERE c.teacher_id=$1
ORDER BY r.created_at DESC, r.id DESC`, teacherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EnrollmentRequest
	for rows.Next() {
		var q EnrollmentRequest
		if err := rows.Scan(
			&q.ID, &q.CourseID, &q.StudentID, &q.CourseTitle, &q.StudentName,
			&q.FullName, &q.Age, &q.Email, &q.Phone, &q.Message, &q.Seen, &q.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *Repo) MarkRequestsSeen(ctx context.Context, teacherID int64, ids []int64) (int64, error) {
	return r.db.ExecAffected(ctx, `
UPDATE enrollment_requests r SET is_seen=true
FROM courses c
WHERE c.id=r.course_id AND c.teacher_id=$1 AND r.id = ANY($2) AND NOT r.is_seen`, teacherID, ids)
}

func (r *Repo) CountUnseenRequests(ctx context.Context, teacherID int64) (int, error) {
	var n int
	err := r.db.QueryRow(ctx, `
SELECT count(*)
FROM enrollment_requests r JOIN courses c ON c.id=r.course_id
WHERE c.teacher_id=$1 AND NOT r.is_seen`, teacherID).Scan(&n)
	return n, err
}

func scanCourse(row db.Row) (Course, error) {
	var c Course
	var level string
	if err := row.Scan(
		&c.ID, &c.Title, &level, &c.Description, &c.ClassDays, &c.ClassTime,
		&c.TeacherID, &c.TeacherName, &c.JoinLink, &c.CreatedAt,
	); err != nil {
		return Course{}, err
	}
	c.RequiredLevel = placement.Level(level)
	return c, nil
}
