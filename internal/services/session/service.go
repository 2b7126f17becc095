package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/enums"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/model"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/pkg/kmutex"
	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/pkg/validate"
	ratesvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/rate"
)

type Service struct {
	jwt       *JWTManager
	directory Directory
	sessions  SessionStore
	notifier  Notifier
	presence  Presence
	gate      LoginGate
	locks     *kmutex.KeyedMutex
	log       *zap.Logger
	now       func() time.Time
}

func NewService(jwtManager *JWTManager, directory Directory, sessions SessionStore, notifier Notifier, presence Presence, gate LoginGate, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		jwt:       jwtManager,
		directory: directory,
		sessions:  sessions,
		notifier:  notifier,
		presence:  presence,
		gate:      gate,
		locks:     kmutex.New(),
		log:       log,
		now:       time.Now,
	}
}

// Login authenticates the user and replaces any prior active session. The
// previous client is told to disconnect; its session row is kept as revoked.
func (s *Service) Login(ctx context.Context, in LoginInput) (LoginResult, error) {
	if !validate.Required(in.Username) || in.Password == "" || !validate.Required(in.Channel) {
		return LoginResult{}, ErrInvalidInput
	}

	if s.gate != nil {
		if err := s.gate.AllowLogin(ctx, in.Username); err != nil {
			var limited *ratesvc.LimitedError
			if errors.As(err, &limited) {
				return LoginResult{}, err
			}
			// A broken gate must not take logins down with it.
			s.log.Warn("login rate check failed", zap.Error(err))
		}
	}

	user, err := s.directory.Lookup(ctx, in.Username)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("lookup user: %w", err)
	}
	if user.Locked {
		return LoginResult{}, ErrAccountLocked
	}

	if err := s.directory.VerifyPassword(ctx, in.Username, in.Password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("verify password: %w", err)
	}

	// Eviction and insert must not interleave with a concurrent login for the
	// same user, or both could observe "no active session".
	key := userKey(user.ID)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.evictActiveSession(ctx, user.ID); err != nil {
		return LoginResult{}, err
	}

	token, expiresAt, err := s.jwt.Sign(user.ID, user.Username, in.IP, in.Channel)
	if err != nil {
		return LoginResult{}, fmt.Errorf("issue token: %w", err)
	}

	record := model.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		Token:     token,
		Status:    enums.SessionStatusActive,
		IP:        in.IP,
		Channel:   in.Channel,
		CreatedAt: s.now().UTC(),
	}
	if err := s.sessions.InsertActive(ctx, record); err != nil {
		if errors.Is(err, ErrSessionConflict) {
			return LoginResult{}, ErrSessionConflict
		}
		return LoginResult{}, fmt.Errorf("insert session: %w", err)
	}

	// Downstream presence registration is best-effort: the caller already
	// holds a valid session, so a failure here is logged, not surfaced.
	if err := s.presence.Register(ctx, user.Code); err != nil {
		s.log.Warn("presence registration failed",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
	}

	return LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		User: UserSummary{
			UserID:   user.ID,
			Username: user.Username,
			Code:     user.Code,
		},
	}, nil
}

// Logout revokes the session matching both the token's user and the exact
// token value. A token that no longer matches an active row mutates nothing.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.jwt.Decode(token)
	if err != nil {
		return ErrInvalidToken
	}

	rows, err := s.sessions.Revoke(ctx, claims.UserID, token)
	if err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	if rows == 0 {
		return ErrNoActiveSession
	}

	return nil
}

func (s *Service) evictActiveSession(ctx context.Context, userID int64) error {
	prev, err := s.sessions.FindActive(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNoActiveSession) {
			return nil
		}
		return fmt.Errorf("find active session: %w", err)
	}

	// A stored token that fails signature checks is a session of unknown
	// origin; refuse to evict it quietly.
	claims, err := s.jwt.DecodeAllowExpired(prev.Token)
	if err != nil {
		return ErrCorruptSession
	}

	if _, err := s.sessions.Revoke(ctx, userID, prev.Token); err != nil {
		return fmt.Errorf("revoke prior session: %w", err)
	}

	delivered, err := s.notifier.Notify(ctx, claims.Channel)
	switch {
	case err != nil:
		s.log.Warn("forced logout notify failed",
			zap.Int64("user_id", userID),
			zap.String("channel", claims.Channel),
			zap.Error(err),
		)
	case !delivered:
		s.log.Debug("forced logout target not connected",
			zap.Int64("user_id", userID),
			zap.String("channel", claims.Channel),
		)
	}

	return nil
}

func userKey(userID int64) string {
	return "user:" + strconv.FormatInt(userID, 10)
}
