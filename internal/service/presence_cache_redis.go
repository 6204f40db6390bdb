package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// PresenceCache keeps last-seen timestamps in Redis so the presence view can
// usually skip the session table. Entries expire with the online window, so a
// cache hit is by construction an online user. Nil-client safe: every method
// degrades to a miss.
type PresenceCache struct {
	client redis.UniversalClient
	prefix string
	window time.Duration
}

func NewPresenceCache(client redis.UniversalClient, prefix string, window time.Duration) *PresenceCache {
	if prefix == "" {
		prefix = "presence"
	}
	return &PresenceCache{client: client, prefix: prefix, window: window}
}

func (c *PresenceCache) key(userID uint) string {
	return fmt.Sprintf("%s:last_seen:%d", c.prefix, userID)
}

func (c *PresenceCache) MarkSeen(ctx context.Context, userID uint, seenAt time.Time) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Set(ctx, c.key(userID), seenAt.UnixMilli(), c.window).Err()
}

// LastSeen returns cached last-seen times for the given users. Users without
// a live cache entry are absent from the map; the caller decides whether to
// fall back to the store of record.
func (c *PresenceCache) LastSeen(ctx context.Context, userIDs []uint) (map[uint]time.Time, error) {
	out := make(map[uint]time.Time, len(userIDs))
	if c == nil || c.client == nil || len(userIDs) == 0 {
		return out, nil
	}
	keys := make([]string, len(userIDs))
	for i, id := range userIDs {
		keys[i] = c.key(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, raw := range values {
		if raw == nil {
			continue
		}
		str, ok := raw.(string)
		if !ok {
			continue
		}
		ms, err := strconv.ParseInt(str, 10, 64)
		if err != nil {
			continue
		}
		out[userIDs[i]] = time.UnixMilli(ms).UTC()
	}
	return out, nil
}
