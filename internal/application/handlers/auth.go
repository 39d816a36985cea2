package handlers

import (
	"net/http"
	"time"

	"github.com/ersonp/campaign-core/internal/domain/schema"
	"github.com/ersonp/campaign-core/internal/domain/services"
	"github.com/ersonp/campaign-core/internal/infrastructure/metrics"
)

// cookieSettings describes the session cookie.
type cookieSettings struct {
	name   string
	secure bool
	ttl    time.Duration
}

func (c cookieSettings) set(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    token,
		Path:     "/",
		MaxAge:   int(c.ttl.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieSettings) clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (c cookieSettings) token(r *http.Request) string {
	cookie, err := r.Cookie(c.name)
	if err != nil {
		return ""
	}
	return cookie.Value
}

// AuthHandler serves registration, login and account endpoints.
type AuthHandler struct {
	auth    *services.AuthService
	metrics *metrics.Metrics
	cookie  cookieSettings
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *services.AuthService, m *metrics.Metrics, cookie cookieSettings) *AuthHandler {
	return &AuthHandler{
		auth:    auth,
		metrics: m,
		cookie:  cookie,
	}
}

// HandleRegister creates an account and logs it in.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	creds, err := schema.DecodeCredentials(body, schema.Create)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	user, token, err := h.auth.Register(r.Context(), creds)
	h.metrics.AuthEvent("register", err == nil)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	h.cookie.set(w, token)
	respondJSON(w, http.StatusCreated, user)
}

// HandleLogin opens a session for valid credentials.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		respondFailure(w, r, err)
		return
	}
	creds, err := schema.DecodeCredentials(body, schema.Login)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	user, token, err := h.auth.Login(r.Context(), creds)
	h.metrics.AuthEvent("login", err == nil)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	h.cookie.set(w, token)
	respondJSON(w, http.StatusOK, user)
}

// HandleLogout ends the current session, if any.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	err := h.auth.Logout(r.Context(), h.cookie.token(r))
	h.metrics.AuthEvent("logout", err == nil)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	h.cookie.clear(w)
	w.WriteHeader(http.StatusNoContent)
}

// HandleGetUser returns the authenticated user.
func (h *AuthHandler) HandleGetUser(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, userFrom(r))
}

// HandleDeleteUser deletes the authenticated account and everything it owns.
func (h *AuthHandler) HandleDeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.auth.DeleteAccount(r.Context(), userFrom(r).ID)
	h.metrics.AuthEvent("delete_account", err == nil)
	if err != nil {
		respondFailure(w, r, err)
		return
	}

	h.cookie.clear(w)
	respondJSON(w, http.StatusOK, messageResponse{Message: "account deleted"})
}
