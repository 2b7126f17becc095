package redis

import (
	"context"
	"fmt"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const presencePrefix = "presence:"

// PresenceRepo registers logged-in identities with the downstream presence
// system. Entries expire on their own; logout does not need to clear them.
type PresenceRepo struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewPresenceRepo(client *goredis.Client, ttl time.Duration) *PresenceRepo {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &PresenceRepo{client: client, ttl: ttl}
}

func (r *PresenceRepo) Register(ctx context.Context, userCode string) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(userCode) == "" {
		return nil
	}

	if err := r.client.Set(ctx, presenceKey(userCode), time.Now().UTC().Unix(), r.ttl).Err(); err != nil {
		return fmt.Errorf("register presence: %w", err)
	}

	return nil
}

func presenceKey(userCode string) string {
	return presencePrefix + userCode
}
