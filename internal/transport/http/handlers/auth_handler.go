package handlers

import (
	"errors"
	"net/http"
	"time"

	ratesvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/rate"
	sessionsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/session"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/transport/http/dto"
	httperrors "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/transport/http/errors"
)

type AuthHandler struct {
	service *sessionsvc.Service
}

func NewAuthHandler(service *sessionsvc.Service) *AuthHandler {
	return &AuthHandler{service: service}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	var req dto.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	res, err := h.service.Login(r.Context(), sessionsvc.LoginInput{
		Username: req.Username,
		Password: req.Password,
		Channel:  req.Channel,
		IP:       clientIP(r, req.IP),
	})
	if err != nil {
		handleLoginError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LoginResponse{
		Token:        res.Token,
		ExpiresInSec: max(0, int64(time.Until(res.ExpiresAt).Seconds())),
		User: dto.LoginUserResponse{
			UserID:   res.User.UserID,
			Username: res.User.Username,
			Code:     res.User.Code,
		},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "AUTH_SERVICE_UNAVAILABLE", "auth service is unavailable")
		return
	}

	token, ok := extractBearerToken(r.Header.Get("Authorization"))
	if !ok {
		writeUnauthorized(w, "UNAUTHORIZED", "missing bearer token")
		return
	}

	if err := h.service.Logout(r.Context(), token); err != nil {
		handleLogoutError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.LogoutResponse{OK: true})
}

func handleLoginError(w http.ResponseWriter, err error) {
	var limited *ratesvc.LimitedError
	if errors.As(err, &limited) {
		writeRateLimited(w, limited.RetryAfterSec)
		return
	}

	switch {
	case errors.Is(err, sessionsvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", "username, password and channel are required")
	case errors.Is(err, sessionsvc.ErrInvalidCredentials):
		writeUnauthorized(w, "INVALID_CREDENTIALS", "invalid username or password")
	case errors.Is(err, sessionsvc.ErrAccountLocked):
		writeForbidden(w, "ACCOUNT_LOCKED", "account is locked; contact support to unlock it")
	case errors.Is(err, sessionsvc.ErrSessionConflict):
		writeConflict(w, "SESSION_CONFLICT", "another login for this user is in progress")
	case errors.Is(err, sessionsvc.ErrCorruptSession):
		writeInternal(w, "CORRUPT_SESSION", "stored session state is corrupt")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}

func handleLogoutError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, sessionsvc.ErrInvalidToken):
		writeUnauthorized(w, "INVALID_TOKEN", "token is malformed or expired")
	case errors.Is(err, sessionsvc.ErrNoActiveSession):
		writeUnauthorized(w, "NO_ACTIVE_SESSION", "no active session matches this token")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
