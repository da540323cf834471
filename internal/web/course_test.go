package web

import (
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func courseForm(title string) url.Values {
	return url.Values{
		"title":          {title},
		"required_level": {"Intermediate"},
		"description":    {"Weekly speaking practice."},
		"class_days":     {"Tuesday-Thursday"},
		"class_time":     {"5-7 pm"},
	}
}

func enrollmentForm() url.Values {
	return url.Values{
		"full_name": {"Maria Lopez"},
		"age":       {"24"},
		"email":     {"maria@example.com"},
		"phone":     {"+34600111222"},
	}
}

// createCourse posts a course as the teacher and returns its page path.
func (e *testEnv) createCourse(t *testing.T, title string) string {
	t.Helper()
	rec := e.do(http.MethodPost, "/courses", courseForm(title), teacherID)
	require.Equal(t, http.StatusFound, rec.Code)
	loc := rec.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/courses/"), loc)
	return loc
}

func TestCreateCourse(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, "/courses", courseForm("Grammar"), studentID).Code)

	bad := courseForm("")
	bad.Set("class_time", "midnight")
	rec := env.do(http.MethodPost, "/courses", bad, teacherID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "This field is required.")
	assert.Contains(t, rec.Body.String(), "midnight is not one of the available choices")

	path := env.createCourse(t, "Grammar")
	rec = env.do(http.MethodGet, "/courses", nil, studentID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `href="`+path+`"`)
	assert.NotContains(t, rec.Body.String(), `action="/courses"`, "students get no create form")

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/courses/999", nil, studentID).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/courses/abc", nil, studentID).Code)
}

func TestEnrollStudentAndGrade(t *testing.T) {
	env := newTestEnv(t)
	path := env.createCourse(t, "Grammar")

	rec := env.do(http.MethodPost, path+"/students", url.Values{"username": {"nobody"}}, teacherID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No student with that username.")

	assert.Equal(t, http.StatusForbidden,
		env.do(http.MethodPost, path+"/students", url.Values{"username": {"maria"}}, otherTeacherID).Code)

	rec = env.do(http.MethodPost, path+"/students", url.Values{"username": {"maria"}}, teacherID)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, path, rec.Header().Get("Location"))

	home := env.do(http.MethodGet, "/", nil, studentID)
	assert.Contains(t, home.Body.String(), "In progress")

	grade := path + "/students/1/grade"
	rec = env.do(http.MethodPost, grade, url.Values{"grade": {"140"}}, teacherID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a whole number from 0 to 100.")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, grade, url.Values{"grade": {"90"}}, otherTeacherID).Code)
	assert.Equal(t, http.StatusForbidden, env.do(http.MethodPost, grade, url.Values{"grade": {"90"}}, studentID).Code)

	rec = env.do(http.MethodPost, grade, url.Values{"grade": {"45"}}, teacherID)
	require.Equal(t, http.StatusFound, rec.Code)

	home = env.do(http.MethodGet, "/", nil, studentID)
	assert.Contains(t, home.Body.String(), "Failed")
	assert.Contains(t, home.Body.String(), "Grammar</a>: 45")
	assert.NotContains(t, home.Body.String(), "In progress")

	env.do(http.MethodPost, grade, url.Values{"grade": {"60"}}, teacherID)
	home = env.do(http.MethodGet, "/", nil, studentID)
	assert.Contains(t, home.Body.String(), "Passed")
	assert.Contains(t, home.Body.String(), "Grammar</a>: 60")
}

func TestEnrollmentRequestFlow(t *testing.T) {
	env := newTestEnv(t)
	path := env.createCourse(t, "Grammar")

	rec := env.do(http.MethodGet, path+"/request", nil, teacherID)
	assert.Equal(t, http.StatusFound, rec.Code, "teachers do not apply")

	rec = env.do(http.MethodGet, path+"/request", nil, studentID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Join Grammar")

	bad := enrollmentForm()
	bad.Set("age", "abc")
	rec = env.do(http.MethodPost, path+"/request", bad, studentID)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Enter a valid age.")
	assert.Contains(t, rec.Body.String(), `value="Maria Lopez"`)

	rec = env.do(http.MethodPost, path+"/request", enrollmentForm(), studentID)
	require.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))

	rec = env.do(http.MethodGet, path+"/request", nil, studentID)
	assert.Equal(t, http.StatusFound, rec.Code, "a second request goes back home")
	rec = env.do(http.MethodGet, path, nil, studentID)
	assert.Contains(t, rec.Body.String(), "Your enrollment request has been sent.")

	assert.Equal(t, http.StatusForbidden, env.do(http.MethodGet, "/enrollment-requests", nil, studentID).Code)

	home := env.do(http.MethodGet, "/", nil, teacherID)
	assert.Contains(t, home.Body.String(), "1 new")

	rec = env.do(http.MethodGet, "/enrollment-requests", nil, teacherID)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "maria@example.com")
	assert.Contains(t, rec.Body.String(), `class="new"`)

	home = env.do(http.MethodGet, "/", nil, teacherID)
	assert.NotContains(t, home.Body.String(), "1 new")

	rec = env.do(http.MethodGet, "/enrollment-requests", nil, teacherID)
	assert.NotContains(t, rec.Body.String(), `class="new"`)

	rec = env.do(http.MethodGet, "/enrollment-requests", nil, otherTeacherID)
	assert.Contains(t, rec.Body.String(), "No enrollment requests yet.")
}
