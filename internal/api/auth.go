package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"neurofleetx/internal/auth"
	"neurofleetx/internal/models"
)

type contextKey string

const userContextKey contextKey = "user"

// tokenFrom pulls the session token from the request. Browsers cannot
// set headers on websocket upgrades, so the query string works too.
func tokenFrom(r *http.Request) string {
	if t := r.Header.Get("X-Auth-Token"); t != "" {
		return t
	}
	return r.URL.Query().Get("token")
}

// authMiddleware resolves the session token and attaches the account to
// the request context.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := tokenFrom(r)
		if token == "" {
			respondError(w, http.StatusUnauthorized, "authentication required")
			return
		}
		u, ok := s.auth.UserForToken(token)
		if !ok {
			respondError(w, http.StatusUnauthorized, "invalid or expired session")
			return
		}
		ctx := context.WithValue(r.Context(), userContextKey, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func userFrom(ctx context.Context) (models.User, bool) {
	u, ok := ctx.Value(userContextKey).(models.User)
	return u, ok
}

// requirePermission writes a 401/403 and returns false when the request's
// account may not perform the operation.
func (s *Server) requirePermission(w http.ResponseWriter, r *http.Request, p models.Permission) bool {
	u, ok := userFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "authentication required")
		return false
	}
	if !u.Role.Can(p) {
		respondError(w, http.StatusForbidden, "permission denied")
		return false
	}
	return true
}

type credentials struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionData struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if c.Email == "" || c.Password == "" {
		respondError(w, http.StatusBadRequest, "email and password are required")
		return
	}

	u, token, err := s.auth.Login(c.Email, c.Password)
	if err != nil {
		if errors.Is(err, auth.ErrLocked) {
			respondError(w, http.StatusLocked, "Account temporarily locked. Please try again later.")
			return
		}
		respondError(w, http.StatusUnauthorized,
			fmt.Sprintf("Invalid email or password. %d attempts remaining.", s.auth.RemainingAttempts()))
		return
	}

	s.store.Notify("Welcome back, "+u.Name+"!", models.NotifyInfo)
	respondJSON(w, http.StatusOK, sessionData{Token: token, User: u})
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if c.Name == "" || c.Email == "" || c.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	u, token, err := s.auth.Signup(c.Name, c.Email, c.Password)
	if err != nil {
		if errors.Is(err, auth.ErrEmailTaken) {
			respondError(w, http.StatusConflict, "email already registered")
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, sessionData{Token: token, User: u})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := tokenFrom(r); token != "" {
		s.auth.Logout(token)
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}
