package auth

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	DefaultTTL = 24 * 7 * time.Hour
	// sessions are written by the trainer platform, the value is the creation unix time
	sessionKeyPrefix = "coach-platform-session||"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient redis.Cmdable
	now         func() time.Time
}

func NewLoginChecker(ttl time.Duration, redisClient redis.Cmdable) *LoginChecker {
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
		now:         time.Now,
	}
}

// IsLogged reports whether the token belongs to a live session. Unknown tokens
// are not an error.
func (lc *LoginChecker) IsLogged(ctx context.Context, token string) (bool, error) {
	sessionKey := sessionKeyPrefix + token
	cmd := lc.redisClient.Get(ctx, sessionKey)
	if err := cmd.Err(); err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}

	createdAtUnix, err := strconv.ParseInt(cmd.Val(), 10, 64)
	if err != nil {
		return false, err
	}
	// logged out sessions are zeroed
	if createdAtUnix <= 0 {
		return false, nil
	}

	createdAt := time.Unix(createdAtUnix, 0)
	if lc.now().Sub(createdAt) > lc.ttl {
		return false, nil
	}

	return true, nil
}
