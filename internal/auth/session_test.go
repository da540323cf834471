package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/englishschool/internal/db"
	"github.com/gorilla/securecookie"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSessions() *Sessions {
	return NewSessions(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32))
}

func sessionCookie(t *testing.T, s *Sessions, uid int64) *http.Cookie {
	t.Helper()
	rec := httptest.NewRecorder()
	require.NoError(t, s.SetSession(rec, httptest.NewRequest(http.MethodGet, "/", nil), uid))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	return cookies[0]
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestSessions()
	c := sessionCookie(t, s, 42)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 14*24*60*60, c.MaxAge)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(c)
	sess, ok := s.GetSession(req)
	require.True(t, ok)
	assert.Equal(t, int64(42), sess.UserID)

	// A cookie minted with other keys is ignored.
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(sessionCookie(t, newTestSessions(), 42))
	_, ok = s.GetSession(req)
	assert.False(t, ok)
}

func TestClearSession(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestSessions().ClearSession(rec)
	c := rec.Result().Cookies()
	require.Len(t, c, 1)
	assert.Equal(t, cookieName, c[0].Name)
	assert.Less(t, c[0].MaxAge, 0)
}

func TestRequireAuth(t *testing.T) {
	s := newTestSessions()
	var seen int64
	h := s.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/placement-test", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	req := httptest.NewRequest(http.MethodGet, "/placement-test", nil)
	req.AddCookie(sessionCookie(t, s, 5))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), seen)
}

type userMap map[int64]User

func (m userMap) GetUser(_ context.Context, id int64) (User, error) {
	u, ok := m[id]
	if !ok {
		return User{}, db.ErrNotFound
	}
	return u, nil
}

func TestLoadUserAndRequireTeacher(t *testing.T) {
	s := newTestSessions()
	users := userMap{
		1: {ID: 1, Username: "stu", Role: RoleStudent},
		2: {ID: 2, Username: "teach", Role: RoleTeacher},
	}
	h := s.RequireAuth(s.LoadUser(users, zap.NewNop())(RequireTeacher(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, _ := UserFromContext(r.Context())
		_, _ = w.Write([]byte(u.Username))
	}))))

	do := func(uid int64) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/level-requests", nil)
		req.AddCookie(sessionCookie(t, s, uid))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusForbidden, do(1).Code)

	rec := do(2)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "teach", rec.Body.String())

	rec = do(99)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
