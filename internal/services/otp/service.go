package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/enums"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/model"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/pkg/kmutex"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/pkg/validate"
	ratesvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/rate"
)

type Config struct {
	Digits      int
	MaxAttempts int
}

type Service struct {
	codes       CodeStore
	gate        GenerateGate
	locks       *kmutex.KeyedMutex
	digits      int
	maxAttempts int
	log         *zap.Logger
	now         func() time.Time
}

func NewService(codes CodeStore, gate GenerateGate, cfg Config, log *zap.Logger) *Service {
	if cfg.Digits < minDigits || cfg.Digits > maxDigits {
		cfg.Digits = 6
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		codes:       codes,
		gate:        gate,
		locks:       kmutex.New(),
		digits:      cfg.Digits,
		maxAttempts: cfg.MaxAttempts,
		log:         log,
		now:         time.Now,
	}
}

// Generate issues a fresh pending code for (subject, purpose). If one is
// already pending the call is refused and the pending code is returned inside
// a DuplicatePendingError; the record itself is untouched.
func (s *Service) Generate(ctx context.Context, in GenerateInput) (int64, error) {
	if !validate.Required(in.Subject) || !validate.Required(in.Purpose) {
		return 0, ErrInvalidInput
	}

	if s.gate != nil {
		if err := s.gate.AllowGenerate(ctx, in.Subject, in.Purpose); err != nil {
			var limited *ratesvc.LimitedError
			if errors.As(err, &limited) {
				return 0, err
			}
			s.log.Warn("otp rate check failed", zap.Error(err))
		}
	}

	key := pairKey(in.Subject, in.Purpose)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	existing, err := s.codes.FindPending(ctx, in.Subject, in.Purpose)
	switch {
	case err == nil:
		return 0, &DuplicatePendingError{Code: existing.Code}
	case !errors.Is(err, ErrCodeNotFound):
		return 0, fmt.Errorf("find pending code: %w", err)
	}

	code, err := NewCode(s.digits)
	if err != nil {
		return 0, fmt.Errorf("generate code: %w", err)
	}

	record := model.OTPRecord{
		Subject:  in.Subject,
		Purpose:  in.Purpose,
		IP:       in.IP,
		Code:     code,
		Status:   enums.OTPStatusPending,
		Attempts: 0,
		IssuedAt: s.now().UTC(),
	}
	if err := s.codes.Insert(ctx, record); err != nil {
		return 0, fmt.Errorf("insert code: %w", err)
	}

	s.log.Info("otp generated",
		zap.String("subject", in.Subject),
		zap.String("purpose", in.Purpose),
	)

	return code, nil
}

// Validate compares the submitted code against the pending record. The wrong
// submission that crosses MaxAttempts invalidates the record; after that the
// caller must request a new code.
func (s *Service) Validate(ctx context.Context, in ValidateInput) error {
	if !validate.Required(in.Subject) || !validate.Required(in.Purpose) {
		return ErrInvalidInput
	}

	key := pairKey(in.Subject, in.Purpose)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	record, err := s.codes.FindPending(ctx, in.Subject, in.Purpose)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return ErrCodeNotFound
		}
		return fmt.Errorf("find pending code: %w", err)
	}

	if in.Code == record.Code {
		if err := s.codes.MarkConsumed(ctx, in.Subject, in.Purpose, record.Code); err != nil {
			return fmt.Errorf("mark code consumed: %w", err)
		}
		return nil
	}

	if record.Attempts >= s.maxAttempts-1 {
		if err := s.codes.MarkInvalidated(ctx, in.Subject, in.Purpose, record.Code); err != nil {
			return fmt.Errorf("mark code invalidated: %w", err)
		}
		return ErrAttemptsExhausted
	}

	attempts, err := s.codes.IncrementAttempts(ctx, in.Subject, in.Purpose, record.Code)
	if err != nil {
		return fmt.Errorf("increment attempts: %w", err)
	}

	s.log.Debug("otp validation failed",
		zap.String("subject", in.Subject),
		zap.String("purpose", in.Purpose),
		zap.Int("attempts", attempts),
	)

	return ErrInvalidCode
}

func pairKey(subject, purpose string) string {
	return subject + "|" + purpose
}
