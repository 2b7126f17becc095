package handlers

import (
	"errors"
	"net/http"

	otpsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/otp"
	ratesvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/rate"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/transport/http/dto"
	httperrors "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/transport/http/errors"
)

type OTPHandler struct {
	service *otpsvc.Service
}

func NewOTPHandler(service *otpsvc.Service) *OTPHandler {
	return &OTPHandler{service: service}
}

func (h *OTPHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "OTP_SERVICE_UNAVAILABLE", "otp service is unavailable")
		return
	}

	var req dto.GenerateOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	code, err := h.service.Generate(r.Context(), otpsvc.GenerateInput{
		Subject: req.Subject,
		Purpose: req.Purpose,
		IP:      clientIP(r, req.IP),
	})
	if err != nil {
		var dup *otpsvc.DuplicatePendingError
		var limited *ratesvc.LimitedError
		switch {
		case errors.As(err, &limited):
			writeRateLimited(w, limited.RetryAfterSec)
		case errors.As(err, &dup):
			httperrors.Write(w, http.StatusConflict, httperrors.PendingCodeError{
				Code:        "DUPLICATE_PENDING",
				Message:     "a code is still pending for this subject and purpose",
				PendingCode: dup.Code,
			})
		case errors.Is(err, otpsvc.ErrInvalidInput):
			writeBadRequest(w, "VALIDATION_ERROR", "subject and purpose are required")
		default:
			writeInternal(w, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httperrors.Write(w, http.StatusOK, dto.GenerateOTPResponse{Code: code})
}

func (h *OTPHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "OTP_SERVICE_UNAVAILABLE", "otp service is unavailable")
		return
	}

	var req dto.ValidateOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	err := h.service.Validate(r.Context(), otpsvc.ValidateInput{
		Subject: req.Subject,
		Purpose: req.Purpose,
		Code:    req.Code,
	})
	if err != nil {
		handleValidateError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, dto.ValidateOTPResponse{OK: true})
}

func handleValidateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, otpsvc.ErrInvalidInput):
		writeBadRequest(w, "VALIDATION_ERROR", "subject and purpose are required")
	case errors.Is(err, otpsvc.ErrCodeNotFound):
		writeNotFound(w, "CODE_NOT_FOUND", "no pending code for this subject and purpose")
	case errors.Is(err, otpsvc.ErrInvalidCode):
		writeBadRequest(w, "INVALID_CODE", "submitted code does not match")
	case errors.Is(err, otpsvc.ErrAttemptsExhausted):
		writeForbidden(w, "ATTEMPTS_EXHAUSTED", "allowed attempts exceeded; request a new code")
	default:
		writeInternal(w, "INTERNAL_ERROR", "internal server error")
	}
}
