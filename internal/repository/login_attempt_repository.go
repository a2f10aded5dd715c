package repository

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// LoginAttemptRepository counts login attempts per username and client address
// inside a TTL window. A successful login clears the counter.
type LoginAttemptRepository interface {
	// RecordAttempt increments the counter and returns the new value. The
	// increment and the returned count come from one atomic INCR.
	RecordAttempt(ctx context.Context, username, clientIP string) (int64, error)
	Reset(ctx context.Context, username, clientIP string) error
}

type loginAttemptRepository struct {
	client    *redis.Client
	window    time.Duration
	keyPrefix string
}

// NewLoginAttemptRepository returns a Redis-backed implementation.
func NewLoginAttemptRepository(client *redis.Client, window time.Duration) LoginAttemptRepository {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &loginAttemptRepository{client: client, window: window, keyPrefix: "auth-gate:login-attempts:"}
}

func (r *loginAttemptRepository) key(username, clientIP string) string {
	return r.keyPrefix + clientIP + ":" + username
}

func (r *loginAttemptRepository) RecordAttempt(ctx context.Context, username, clientIP string) (int64, error) {
	key := r.key(username, clientIP)
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

func (r *loginAttemptRepository) Reset(ctx context.Context, username, clientIP string) error {
	return r.client.Del(ctx, r.key(username, clientIP)).Err()
}
