package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type sessionPurger interface {
	DeleteRevokedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type codePurger interface {
	DeleteSettledBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Job prunes rows that only exist for audit trails: revoked sessions and
// settled one-time codes past their retention.
type Job struct {
	sessions         sessionPurger
	codes            codePurger
	sessionRetention time.Duration
	codeRetention    time.Duration
	now              func() time.Time
	logger           *zap.Logger
}

func New(sessions sessionPurger, codes codePurger, sessionRetention, codeRetention time.Duration, logger *zap.Logger) *Job {
	if sessionRetention <= 0 {
		sessionRetention = 30 * 24 * time.Hour
	}
	if codeRetention <= 0 {
		codeRetention = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		sessions:         sessions,
		codes:            codes,
		sessionRetention: sessionRetention,
		codeRetention:    codeRetention,
		now:              time.Now,
		logger:           logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.sessions != nil {
		cutoff := j.now().Add(-j.sessionRetention)
		rows, err := j.sessions.DeleteRevokedBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup revoked sessions: %w", err)
		}
		if rows > 0 {
			j.logger.Info("cleanup revoked sessions completed", zap.Int64("deleted", rows))
		}
	}

	if j.codes != nil {
		cutoff := j.now().Add(-j.codeRetention)
		rows, err := j.codes.DeleteSettledBefore(ctx, cutoff)
		if err != nil {
			return fmt.Errorf("cleanup settled codes: %w", err)
		}
		if rows > 0 {
			j.logger.Info("cleanup settled codes completed", zap.Int64("deleted", rows))
		}
	}

	return nil
}
