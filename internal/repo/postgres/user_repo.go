package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/bcrypt"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/model"
	sessionsvc "github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/services/session"
)

// UserRepo reads the identity directory. It is read-only to this service;
// account provisioning and password rotation live elsewhere.
type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Lookup(ctx context.Context, username string) (model.User, error) {
	if r.pool == nil {
		return model.User{}, fmt.Errorf("postgres pool is nil")
	}
	if strings.TrimSpace(username) == "" {
		return model.User{}, sessionsvc.ErrInvalidCredentials
	}

	var user model.User
	err := r.pool.QueryRow(ctx, `
SELECT id, username, code, locked
FROM users
WHERE username = $1
`, username).Scan(&user.ID, &user.Username, &user.Code, &user.Locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.User{}, sessionsvc.ErrInvalidCredentials
		}
		return model.User{}, fmt.Errorf("lookup user: %w", err)
	}

	return user, nil
}

func (r *UserRepo) VerifyPassword(ctx context.Context, username, password string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	var hash string
	err := r.pool.QueryRow(ctx, `
SELECT password_hash
FROM users
WHERE username = $1
`, username).Scan(&hash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return sessionsvc.ErrInvalidCredentials
		}
		return fmt.Errorf("load password hash: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return sessionsvc.ErrInvalidCredentials
	}

	return nil
}
