package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/example/englishschool/internal/db"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

const (
	cookieName = "englishschool_session"
	sessionTTL = 14 * 24 * time.Hour
)

type ctxKey string

const (
	userIDKey ctxKey = "userID"
	userKey   ctxKey = "user"
)

type Session struct {
	UserID int64
}

type Sessions struct {
	sc *securecookie.SecureCookie
}

func NewSessions(hashKey, blockKey []byte) *Sessions {
	sc := securecookie.New(hashKey, blockKey)
	sc.MaxAge(int(sessionTTL.Seconds()))
	return &Sessions{sc: sc}
}

func (s *Sessions) SetSession(w http.ResponseWriter, r *http.Request, userID int64) error {
	encoded, err := s.sc.Encode(cookieName, map[string]int64{"uid": userID, "v": 1})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
		MaxAge:   int(sessionTTL.Seconds()),
	})
	return nil
}

func (s *Sessions) ClearSession(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})
}

func (s *Sessions) GetSession(r *http.Request) (Session, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return Session{}, false
	}
	val := map[string]int64{}
	if err := s.sc.Decode(cookieName, c.Value, &val); err != nil {
		return Session{}, false
	}
	uid := val["uid"]
	if uid <= 0 {
		return Session{}, false
	}
	return Session{UserID: uid}, true
}

// RequireAuth sends visitors without a valid session to /login.
func (s *Sessions) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, ok := s.GetSession(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), sess.UserID)))
	})
}

func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey, id)
}

func UserIDFromContext(ctx context.Context) (int64, bool) {
	uid, ok := ctx.Value(userIDKey).(int64)
	return uid, ok
}

type UserGetter interface {
	GetUser(ctx context.Context, id int64) (User, error)
}

// LoadUser resolves the session user and stores it in the request context.
// A session whose user no longer exists is cleared. It must run after
// RequireAuth.
func (s *Sessions) LoadUser(users UserGetter, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, _ := UserIDFromContext(r.Context())
			u, err := users.GetUser(r.Context(), uid)
			if db.IsNotFound(err) {
				logger.Info("session for missing user", zap.Int64("user_id", uid))
				s.ClearSession(w)
				http.Redirect(w, r, "/login", http.StatusFound)
				return
			}
			if err != nil {
				logger.Error("load session user", zap.Int64("user_id", uid), zap.Error(err))
				http.Error(w, "internal error", http.StatusInternalServerError)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userKey, u)))
		})
	}
}

func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userKey).(User)
	return u, ok
}

// RequireTeacher answers 403 unless LoadUser put a teacher in the context.
func RequireTeacher(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := UserFromContext(r.Context())
		if !ok || !u.IsTeacher() {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
