// Package http provides the JSON API handlers for accounts, sessions and
// news submission.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/akarpov/newsline/internal/middleware"
	"github.com/akarpov/newsline/internal/models"

	"github.com/go-chi/chi/v5"
)

// IdentityService defines the identity operations required by the HTTP
// handlers.
type IdentityService interface {
	// CreateUser registers an account and returns its first session token.
	CreateUser(ctx context.Context, username, password string) (string, error)
	// CheckCredentials verifies a username/password pair and returns the
	// user's current session token.
	CheckCredentials(ctx context.Context, username, password string) (string, error)
	// RotateToken replaces the user's session token, logging out every
	// session issued under the previous one.
	RotateToken(ctx context.Context, userID int64) (string, error)
	// GetByUsername returns the user with the given username.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

// AuthHandler handles HTTP requests for registration, login and logout.
type AuthHandler struct {
	// Identity performs the underlying account operations.
	Identity IdentityService
}

// credentialsRequest represents the JSON payload for registration and login.
type credentialsRequest struct {
	// Username is the account name.
	Username string `json:"username"`
	// Password is the plaintext password; it is hashed before storage.
	Password string `json:"password"`
}

// setAuthCookie installs the session token as an HTTP-only cookie.
func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func clearAuthCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AuthCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		MaxAge:   -1,
	})
}

// Register handles account creation requests.
// It expects a JSON body with a non-empty "username" field; on success it
// sets the auth cookie and returns the session token.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.Identity.CreateUser(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, models.ErrValidation):
		writeErr(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, models.ErrUsernameTaken):
		writeErr(w, http.StatusConflict, "Username is busy. Please select a different one.")
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "auth": token})
}

// Login handles credential checks. A matching pair returns the user's
// current token; unknown usernames and wrong passwords get the same answer.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "invalid request")
		return
	}

	token, err := h.Identity.CheckCredentials(r.Context(), req.Username, req.Password)
	switch {
	case errors.Is(err, models.ErrInvalidCredentials):
		writeErr(w, http.StatusUnauthorized, "No match for the specified username / password pair.")
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "auth": token})
}

// Logout rotates the caller's session token, invalidating every session
// issued under the old one, and clears the auth cookie.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	u := middleware.UserFromContext(r.Context())
	if u == nil {
		writeErr(w, http.StatusUnauthorized, "Not authenticated.")
		return
	}

	if _, err := h.Identity.RotateToken(r.Context(), u.ID); err != nil {
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	clearAuthCookie(w)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Profile returns the public fields of a user looked up by username.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	u, err := h.Identity.GetByUsername(r.Context(), chi.URLParam(r, "username"))
	switch {
	case errors.Is(err, models.ErrNotFound):
		writeErr(w, http.StatusNotFound, "No such user.")
		return
	case err != nil:
		writeErr(w, http.StatusInternalServerError, "internal error")
		return
	}

	// Digest and token stay private.
	writeJSON(w, http.StatusOK, map[string]any{
		"status":   "ok",
		"username": u.Username,
		"karma":    u.Karma,
		"about":    u.About,
		"email":    u.Email,
		"ctime":    u.CTime,
	})
}
