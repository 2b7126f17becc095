package errors

import (
	"encoding/json"
	"net/http"
)

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// PendingCodeError is the conflict payload for OTP generation when a code is
// still pending: it carries that code back to the caller.
type PendingCodeError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	PendingCode int64  `json:"pending_code"`
}

func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
