package otp

import (
	"context"
	"errors"
	"fmt"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/model"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrCodeNotFound      = errors.New("no pending code")
	ErrInvalidCode       = errors.New("code mismatch")
	ErrAttemptsExhausted = errors.New("attempts exhausted")
)

// DuplicatePendingError reports that generation was refused because a code is
// still pending for the (subject, purpose) pair. It carries that code so the
// caller can hand it back to deployments that re-deliver out-of-band.
type DuplicatePendingError struct {
	Code int64
}

func (e *DuplicatePendingError) Error() string {
	return fmt.Sprintf("a pending code already exists (%d)", e.Code)
}

// CodeStore persists OTP records. Mutations are conditional on the record
// still being pending; terminal states never regress.
type CodeStore interface {
	FindPending(ctx context.Context, subject, purpose string) (model.OTPRecord, error)
	Insert(ctx context.Context, record model.OTPRecord) error
	MarkConsumed(ctx context.Context, subject, purpose string, code int64) error
	MarkInvalidated(ctx context.Context, subject, purpose string, code int64) error
	IncrementAttempts(ctx context.Context, subject, purpose string, code int64) (int, error)
}

// GenerateGate throttles code generation per (subject, purpose) pair. A
// *rate.LimitedError stops the call; any other failure is ignored.
type GenerateGate interface {
	AllowGenerate(ctx context.Context, subject, purpose string) error
}

type GenerateInput struct {
	Subject string
	Purpose string
	IP      string
}

type ValidateInput struct {
	Subject string
	Purpose string
	Code    int64
}
