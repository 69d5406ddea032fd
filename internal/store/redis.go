package store

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

const redisPingTimeout = time.Second

// Redis is the client shared by the roster cache, the seed queue and seed job tracking.
type Redis struct {
	Client *redis.Client
	addr   string
}

// NewRedis builds a client for addr without dialing. The pool stays small: the API makes at most
// two roster reads per request and the worker holds a single blocking pop.
func NewRedis(addr string) *Redis {
	return &Redis{
		addr: addr,
		Client: redis.NewClient(&redis.Options{
			Addr:            addr,
			DialTimeout:     2 * time.Second,
			ReadTimeout:     time.Second,
			WriteTimeout:    time.Second,
			PoolSize:        10,
			MinIdleConns:    1,
			ConnMaxIdleTime: 5 * time.Minute,
		}),
	}
}

// Ping checks connectivity within a short deadline and names the address on failure.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, redisPingTimeout)
	defer cancel()
	return errors.Wrapf(r.Client.Ping(ctx).Err(), "ping redis at %s", r.addr)
}

// Healthy implements handler.Pinger.
func (r *Redis) Healthy(ctx context.Context) bool {
	return r.Ping(ctx) == nil
}

// Close releases the connection pool.
func (r *Redis) Close() error {
	if r == nil || r.Client == nil {
		return nil
	}
	return r.Client.Close()
}
