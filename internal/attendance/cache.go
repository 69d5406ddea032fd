package attendance

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Roster cache keys.
const (
	rosterTeachers = "teachers"
	rosterStudents = "students"
)

// RosterCache stores encoded roster lists.
type RosterCache interface {
	Get(ctx context.Context, roster string, dst any) (bool, error)
	Set(ctx context.Context, roster string, v any) error
	Invalidate(ctx context.Context, rosters ...string) error
}

// RedisCache keeps rosters as JSON strings under roster:<name>.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache returns a cache whose entries expire after ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func rosterKey(roster string) string { return "roster:" + roster }

func (c *RedisCache) Get(ctx context.Context, roster string, dst any) (bool, error) {
	raw, err := c.client.Get(ctx, rosterKey(roster)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrapf(err, "get %s", rosterKey(roster))
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, errors.Wrapf(err, "decode %s", rosterKey(roster))
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, roster string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", rosterKey(roster))
	}
	return errors.Wrapf(c.client.Set(ctx, rosterKey(roster), raw, c.ttl).Err(), "set %s", rosterKey(roster))
}

func (c *RedisCache) Invalidate(ctx context.Context, rosters ...string) error {
	keys := make([]string, 0, len(rosters))
	for _, r := range rosters {
		keys = append(keys, rosterKey(r))
	}
	return errors.Wrap(c.client.Del(ctx, keys...).Err(), "invalidate rosters")
}
