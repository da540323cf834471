package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/englishschool/internal/auth"
	"github.com/example/englishschool/internal/internaltypes"
	"go.uber.org/zap"
)

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.Sessions.GetSession(r); ok {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.render(w, http.StatusOK, "templates/login.html", tmplData{Title: "Login"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	username := strings.TrimSpace(r.FormValue("username"))
	password := r.FormValue("password")
	form := map[string]string{"username": username}

	if username == "" || password == "" {
		s.render(w, http.StatusOK, "templates/login.html", tmplData{
			Title: "Login", Flash: "Username and password are required.", Form: form,
		})
		return
	}

	id, err := s.Users.Authenticate(r.Context(), username, password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		s.render(w, http.StatusOK, "templates/login.html", tmplData{
			Title: "Login", Flash: "Wrong username or password!", Form: form,
		})
		return
	}
	if err != nil {
		s.serverError(w, r, "authenticate", err)
		return
	}
	if err := s.Sessions.SetSession(w, r, id); err != nil {
		s.serverError(w, r, "set session", err)
		return
	}
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.ClearSession(w)
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleSignupForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, "templates/signup.html", tmplData{
		Title: "Sign up",
		Form:  map[string]string{"user_type": string(auth.RoleStudent)},
	})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req := auth.SignupRequest{
		Username: r.FormValue("username"),
		Email:    r.FormValue("email"),
		Password: r.FormValue("password"),
		Confirm:  r.FormValue("confirm_password"),
		Role:     r.FormValue("user_type"),
		Code:     r.FormValue("registration_code"),
	}

	u, err := s.Registration.Register(r.Context(), req)
	var verr *internaltypes.ValidationError
	if errors.As(err, &verr) {
		s.render(w, http.StatusOK, "templates/signup.html", tmplData{
			Title:  "Sign up",
			Errors: verr.Fields,
			Form: map[string]string{
				"username":  strings.TrimSpace(req.Username),
				"email":     strings.TrimSpace(req.Email),
				"user_type": req.Role,
			},
		})
		return
	}
	if err != nil {
		s.serverError(w, r, "register", err)
		return
	}
	s.Logger.Info("user registered",
		zap.Int64("user_id", u.ID),
		zap.String("username", u.Username),
		zap.String("role", string(u.Role)),
	)
	http.Redirect(w, r, "/login", http.StatusFound)
}
