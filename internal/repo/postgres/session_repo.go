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
	sessionsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/session"
)

type SessionRepo struct {
	pool *pgxpool.Pool
}

func NewSessionRepo(pool *pgxpool.Pool) *SessionRepo {
	return &SessionRepo{pool: pool}
}

func (r *SessionRepo) FindActive(ctx context.Context, userID int64) (model.Session, error) {
	if r.pool == nil {
		return model.Session{}, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 {
		return model.Session{}, fmt.Errorf("invalid user_id")
	}

	var (
		session model.Session
		status  string
	)
	err := r.pool.QueryRow(ctx, `
SELECT id, user_id, token, status, ip, channel, created_at, revoked_at
FROM sessions
WHERE user_id = $1 AND status = 'active'
`, userID).Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&status,
		&session.IP,
		&session.Channel,
		&session.CreatedAt,
		&session.RevokedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Session{}, sessionsvc.ErrNoActiveSession
		}
		return model.Session{}, fmt.Errorf("find active session: %w", err)
	}
	session.Status = enums.SessionStatus(status)

	return session, nil
}

func (r *SessionRepo) InsertActive(ctx context.Context, session model.Session) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}
	if session.UserID <= 0 || session.Token == "" {
		return fmt.Errorf("invalid session payload")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO sessions (id, user_id, token, status, ip, channel, created_at)
VALUES ($1, $2, $3, 'active', $4, $5, $6)
`, session.ID, session.UserID, session.Token, session.IP, session.Channel, session.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return sessionsvc.ErrSessionConflict
		}
		return fmt.Errorf("insert active session: %w", err)
	}

	return nil
}

func (r *SessionRepo) Revoke(ctx context.Context, userID int64, token string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}
	if userID <= 0 || token == "" {
		return 0, fmt.Errorf("invalid revoke payload")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE sessions
SET status = 'revoked', revoked_at = NOW()
WHERE user_id = $1 AND token = $2 AND status = 'active'
`, userID, token)
	if err != nil {
		return 0, fmt.Errorf("revoke session: %w", err)
	}

	return tag.RowsAffected(), nil
}

// DeleteRevokedBefore drops revoked rows whose revocation is older than the
// cutoff. Active rows are never touched.
func (r *SessionRepo) DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM sessions
WHERE status = 'revoked' AND revoked_at < $1
`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete revoked sessions: %w", err)
	}

	return tag.RowsAffected(), nil
}
