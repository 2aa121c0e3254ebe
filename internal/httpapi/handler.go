// Package httpapi serves the session endpoints over net/http.
package httpapi

import (
	"errors"
	"net/http"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/cookie"
	"github.com/MrEthical07/goSession/middleware"
	"github.com/MrEthical07/goSession/users"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 16

type Handler struct {
	engine *goSession.Engine
	logger *zap.Logger
}

func New(engine *goSession.Engine, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{engine: engine, logger: logger}
}

// Routes mounts:
//
//	POST /auth/signup/customer  customer sign-up (also at /auth/signup)
//	POST /auth/signup/admin     admin sign-up, admin access token required
//	POST /auth/login
//	POST /auth/refresh
//	POST /auth/logout        access token required
//	GET  /auth/me            access token required
func (h *Handler) Routes() http.Handler {
	guard := middleware.Guard(h.engine)
	adminOnly := func(next http.Handler) http.Handler {
		return guard(middleware.RequireRole(users.RoleAdmin)(next))
	}

	mux := http.NewServeMux()
	customer := h.signup(users.RoleCustomer)
	mux.HandleFunc("POST /auth/signup", customer)
	mux.HandleFunc("POST /auth/signup/customer", customer)
	mux.Handle("POST /auth/signup/admin", adminOnly(h.signup(users.RoleAdmin)))
	mux.HandleFunc("POST /auth/login", h.login)
	mux.HandleFunc("POST /auth/refresh", h.refresh)
	mux.Handle("POST /auth/logout", guard(http.HandlerFunc(h.logout)))
	mux.Handle("GET /auth/me", guard(http.HandlerFunc(h.me)))
	return withClientInfo(mux)
}

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Redirect bool   `json:"redirect"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
	UserID       string `json:"user_id"`
}

// Tokens travel only in http-only cookies; bodies carry expiry times.
type refreshResponse struct {
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func (h *Handler) signup(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req signupRequest
		if !decode(w, r, &req) {
			return
		}
		view, err := h.engine.Register(r.Context(), goSession.RegisterInput{
			Email:    req.Email,
			Password: req.Password,
			Role:     role,
		})
		if err != nil {
			h.fail(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, view)
	}
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}

	sink := cookie.NewResponseSink(w, h.engine.Config())
	res, err := h.engine.Login(r.Context(), goSession.Credentials{
		Email:    req.Email,
		Password: req.Password,
		Redirect: req.Redirect,
	}, sink)
	if err != nil {
		h.fail(w, err)
		return
	}

	if res.RedirectTo != "" {
		http.Redirect(w, r, res.RedirectTo, http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusOK, res.Principal)
}

// refresh takes the token from the JSON body or, failing that, the refresh
// cookie. user_id is optional and must match the token's subject when set.
func (h *Handler) refresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if r.ContentLength != 0 {
		if !decode(w, r, &req) {
			return
		}
	}
	cfg := h.engine.Config()
	if req.RefreshToken == "" {
		req.RefreshToken, _ = cookie.Value(r, cfg.Cookie.RefreshName)
	}
	if req.RefreshToken == "" {
		writeError(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	pair, err := h.engine.Refresh(r.Context(), req.RefreshToken, req.UserID, cookie.NewResponseSink(w, cfg))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, refreshResponse{
		AccessExpiresAt:  pair.AccessExpiresAt,
		RefreshExpiresAt: pair.RefreshExpiresAt,
	})
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	if err := h.engine.Logout(r.Context(), claims.Subject, cookie.NewResponseSink(w, h.engine.Config())); err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "Logged out successfully"})
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	view, err := h.engine.CurrentPrincipal(r.Context(), claims.Subject)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, status, "internal error")
		return
	}
	writeError(w, status, err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, goSession.ErrInvalidCredentials),
		errors.Is(err, goSession.ErrInvalidRefreshToken),
		errors.Is(err, goSession.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, goSession.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, goSession.ErrAccountCreationInvalid),
		errors.Is(err, goSession.ErrAccountRoleInvalid):
		return http.StatusBadRequest
	case errors.Is(err, goSession.ErrAccountCreationDisabled):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
