package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"
)

const logoutChannelPrefix = "logout:"

// NotifierRepo delivers forced-logout signals over redis pub/sub. Gateways
// holding client connections subscribe to logout:<channel> for each connected
// client and close the connection when a signal arrives.
type NotifierRepo struct {
	client *goredis.Client
}

func NewNotifierRepo(client *goredis.Client) *NotifierRepo {
	return &NotifierRepo{client: client}
}

func (r *NotifierRepo) Notify(ctx context.Context, channel string) (bool, error) {
	if r.client == nil {
		return false, fmt.Errorf("redis client is nil")
	}
	if strings.TrimSpace(channel) == "" {
		return false, nil
	}

	payload, err := json.Marshal(map[string]string{"action": "logout"})
	if err != nil {
		return false, fmt.Errorf("marshal logout signal: %w", err)
	}

	receivers, err := r.client.Publish(ctx, logoutChannelKey(channel), payload).Result()
	if err != nil {
		return false, fmt.Errorf("publish logout signal: %w", err)
	}

	return receivers > 0, nil
}

func logoutChannelKey(channel string) string {
	return logoutChannelPrefix + channel
}
