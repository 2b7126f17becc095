package session

import (
	"context"
	"errors"
	"time"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/model"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountLocked      = errors.New("account locked")
	ErrCorruptSession     = errors.New("corrupt session state")
	ErrSessionConflict    = errors.New("session persistence conflict")
	ErrInvalidToken       = errors.New("invalid token")
	ErrNoActiveSession    = errors.New("no active session")
)

// Directory is the external identity store. Lookups for unknown usernames and
// password mismatches both surface ErrInvalidCredentials so callers cannot
// probe which usernames exist.
type Directory interface {
	Lookup(ctx context.Context, username string) (model.User, error)
	VerifyPassword(ctx context.Context, username, password string) error
}

// SessionStore persists sessions. Implementations must refuse a second active
// row for the same user (ErrSessionConflict) even if the caller's own
// serialization fails.
type SessionStore interface {
	FindActive(ctx context.Context, userID int64) (model.Session, error)
	InsertActive(ctx context.Context, session model.Session) error
	Revoke(ctx context.Context, userID int64, token string) (int64, error)
}

// Notifier delivers a forced-logout signal to a client channel. A false return
// means the target is not currently connected, which is a normal outcome.
type Notifier interface {
	Notify(ctx context.Context, channel string) (bool, error)
}

// Presence registers a logged-in identity with the downstream presence system.
type Presence interface {
	Register(ctx context.Context, userCode string) error
}

// LoginGate throttles login attempts per username. A *rate.LimitedError stops
// the login; any other failure is treated as a gate outage and ignored.
type LoginGate interface {
	AllowLogin(ctx context.Context, username string) error
}

type LoginInput struct {
	Username string
	Password string
	Channel  string
	IP       string
}

type UserSummary struct {
	UserID   int64
	Username string
	Code     string
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	User      UserSummary
}

type Claims struct {
	UserID    int64
	Username  string
	IP        string
	Channel   string
	ExpiresAt time.Time
}
