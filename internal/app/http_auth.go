package app

import (
	"net/http"
	"time"

	"github.com/alswp006/blog-writer/internal/auth"
	"github.com/alswp006/blog-writer/internal/authpw"
)

func (s *HTTPServer) handleAuth(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/signup":
		s.handleAuthSignUp(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/login":
		s.handleAuthLogin(w, r)
	case r.Method == http.MethodPost && r.URL.Path == "/api/auth/logout":
		s.handleAuthLogout(w, r)
	case r.Method == http.MethodGet && r.URL.Path == "/api/auth/me":
		claims, ok := s.requireSession(w, r)
		if !ok {
			return
		}
		user, err := s.service.CurrentUser(r.Context(), claims.UserID)
		if err != nil {
			s.writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"user": user})
	default:
		writeError(w, http.StatusNotFound, CodeNotFound, "Not found", nil)
	}
}

func (s *HTTPServer) handleAuthSignUp(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	issued, err := s.service.SignUp(r.Context(), clientKey(r), authpw.SignUpRequest{
		Email:    body.Email,
		Password: body.Password,
		Name:     body.Name,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.setSessionCookie(w, issued.Token, issued.ExpiresAt)
	writeJSON(w, http.StatusCreated, map[string]any{"user": issued.User})
}

func (s *HTTPServer) handleAuthLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !s.decode(w, r, &body) {
		return
	}
	issued, err := s.service.Login(r.Context(), clientKey(r), authpw.SignInRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.setSessionCookie(w, issued.Token, issued.ExpiresAt)
	writeJSON(w, http.StatusOK, map[string]any{"user": issued.User})
}

func (s *HTTPServer) handleAuthLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.service.Logout(r.Context(), sessionToken(r)); err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.clearSessionCookie(w)
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (s *HTTPServer) setSessionCookie(w http.ResponseWriter, token string, expiresAt time.Time) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(time.Until(expiresAt).Seconds()),
		HttpOnly: true,
		Secure:   s.service.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *HTTPServer) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.service.cfg.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}
