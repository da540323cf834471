package course_test

import (
	"testing"

	"github.com/example/englishschool/internal/course"
	"github.com/stretchr/testify/assert"
)

func grade(g int) *int { return &g }

func TestStandingOf(t *testing.T) {
	cases := []struct {
		name  string
		grade *int
		want  course.Standing
	}{
		{name: "no grade yet", grade: nil, want: course.InProgress},
		{name: "zero", grade: grade(0), want: course.Failed},
		{name: "just below pass mark", grade: grade(59), want: course.Failed},
		{name: "pass mark", grade: grade(60), want: course.Passed},
		{name: "full marks", grade: grade(100), want: course.Passed},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, course.StandingOf(tc.grade))
		})
	}
}

func TestSplitKeepsOrderWithinBuckets(t *testing.T) {
	es := []course.Enrollment{
		{ID: 1, CourseTitle: "Grammar", Grade: grade(75)},
		{ID: 2, CourseTitle: "Listening"},
		{ID: 3, CourseTitle: "Reading", Grade: grade(40)},
		{ID: 4, CourseTitle: "Speaking", Grade: grade(60)},
		{ID: 5, CourseTitle: "Writing"},
	}

	d := course.Split(es)

	ids := func(es []course.Enrollment) []int64 {
		var out []int64
		for _, e := range es {
			out = append(out, e.ID)
		}
		return out
	}
	assert.Equal(t, []int64{1, 4}, ids(d.Passed))
	assert.Equal(t, []int64{3}, ids(d.Failed))
	assert.Equal(t, []int64{2, 5}, ids(d.InProgress))
	assert.False(t, d.Empty())
	assert.True(t, course.Split(nil).Empty())
}
