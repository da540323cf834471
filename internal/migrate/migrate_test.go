package migrate

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrations(t *testing.T) {
	entries, err := fs.ReadDir(migrations, dir)
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	for _, e := range entries {
		b, err := fs.ReadFile(migrations, dir+"/"+e.Name())
		require.NoError(t, err)
		body := string(b)
		assert.Contains(t, body, "-- +goose Up", e.Name())
		assert.Contains(t, body, "-- +goose Down", e.Name())
	}
}

func TestSlotUniqueConstraintIsDeclared(t *testing.T) {
	b, err := fs.ReadFile(migrations, dir+"/00002_placement_reservations.sql")
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(b), "CONSTRAINT placement_reservations_slot_key UNIQUE (slot_date, slot_time)"))
}

func TestCourseConstraintsAreDeclared(t *testing.T) {
	b, err := fs.ReadFile(migrations, dir+"/00003_courses.sql")
	require.NoError(t, err)
	body := string(b)
	assert.Contains(t, body, "CONSTRAINT enrollments_course_student_key UNIQUE (course_id, student_id)")
	assert.Contains(t, body, "CONSTRAINT enrollment_requests_course_student_key UNIQUE (course_id, student_id)")
	assert.Contains(t, body, "grade SMALLINT CHECK (grade BETWEEN 0 AND 100)")
}
