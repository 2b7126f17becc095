package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/enums"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/model"
	otpsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/otp"
)

type OTPRepo struct {
	pool *pgxpool.Pool
}

func NewOTPRepo(pool *pgxpool.Pool) *OTPRepo {
	return &OTPRepo{pool: pool}
}

func (r *OTPRepo) FindPending(ctx context.Context, subject, purpose string) (model.OTPRecord, error) {
	if r.pool == nil {
		return model.OTPRecord{}, fmt.Errorf("postgres pool is nil")
	}

	var (
		record model.OTPRecord
		status string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, subject, purpose, ip, code, status, attempts, issued_at
FROM otp_codes
WHERE subject = $1 AND purpose = $2 AND status = 'pending'
`, subject, purpose).Scan(
		&record.ID,
		&record.Subject,
		&record.Purpose,
		&record.IP,
		&record.Code,
		&status,
		&record.Attempts,
		&record.IssuedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.OTPRecord{}, otpsvc.ErrCodeNotFound
		}
		return model.OTPRecord{}, fmt.Errorf("find pending code: %w", err)
	}
	record.Status = enums.OTPStatus(status)

	return record, nil
}

func (r *OTPRepo) Insert(ctx context.Context, record model.OTPRecord) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO otp_codes (subject, purpose, ip, code, status, attempts, issued_at)
VALUES ($1, $2, $3, $4, 'pending', $5, $6)
`, record.Subject, record.Purpose, record.IP, record.Code, record.Attempts, record.IssuedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			// Another instance won the race; surface its still-pending code.
			existing, findErr := r.FindPending(ctx, record.Subject, record.Purpose)
			if findErr == nil {
				return &otpsvc.DuplicatePendingError{Code: existing.Code}
			}
		}
		return fmt.Errorf("insert code: %w", err)
	}

	return nil
}

func (r *OTPRepo) MarkConsumed(ctx context.Context, subject, purpose string, code int64) error {
	return r.settle(ctx, subject, purpose, code, "consumed")
}

func (r *OTPRepo) MarkInvalidated(ctx context.Context, subject, purpose string, code int64) error {
	return r.settle(ctx, subject, purpose, code, "invalidated")
}

// IncrementAttempts bumps the failed-attempt counter under a row lock so
// concurrent instances cannot lose an increment.
func (r *OTPRepo) IncrementAttempts(ctx context.Context, subject, purpose string, code int64) (int, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var attempts int
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `
SELECT attempts
FROM otp_codes
WHERE subject = $1 AND purpose = $2 AND code = $3 AND status = 'pending'
FOR UPDATE
`, subject, purpose, code).Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return otpsvc.ErrCodeNotFound
			}
			return fmt.Errorf("lock pending code: %w", err)
		}

		attempts = current + 1
		if _, err := tx.Exec(ctx, `
UPDATE otp_codes
SET attempts = $4
WHERE subject = $1 AND purpose = $2 AND code = $3 AND status = 'pending'
`, subject, purpose, code, attempts); err != nil {
			return fmt.Errorf("update attempts: %w", err)
		}

		return nil
	})
	if err != nil {
		return 0, err
	}

	return attempts, nil
}

// DeleteSettledBefore drops consumed and invalidated rows issued before the
// cutoff. Pending rows stay until they settle.
func (r *OTPRepo) DeleteSettledBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM otp_codes
WHERE status IN ('consumed', 'invalidated') AND issued_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete settled codes: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *OTPRepo) settle(ctx context.Context, subject, purpose string, code int64, status string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE otp_codes
SET status = $4
WHERE subject = $1 AND purpose = $2 AND code = $3 AND status = 'pending'
`, subject, purpose, code, status)
	if err != nil {
		return fmt.Errorf("mark code %s: %w", status, err)
	}
	if tag.RowsAffected() == 0 {
		return otpsvc.ErrCodeNotFound
	}

	return nil
}
