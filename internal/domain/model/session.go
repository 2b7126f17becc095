package model

import (
	"time"

	"github.com/HSM-SANOSOFT/hsm-be-core-auth/internal/domain/enums"
)

type Session struct {
	ID        string              `json:"id"`
	UserID    int64               `json:"user_id"`
	Token     string              `json:"token"`
	Status    enums.SessionStatus `json:"status"`
	IP        string              `json:"ip"`
	Channel   string              `json:"channel"`
	CreatedAt time.Time           `json:"created_at"`
	RevokedAt *time.Time          `json:"revoked_at,omitempty"`
}
