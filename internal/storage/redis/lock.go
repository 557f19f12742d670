package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	pkgredis "alpools-bot/pkg/redis"
)

var ErrLockTimeout = errors.New("lock wait timed out")

var errLockBusy = errors.New("lock is held")

// releaseScript deletes the key only while it still holds our token.
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker is a Redis SET NX mutex. Holders that die release it through the TTL.
type Locker struct {
	client *pkgredis.Client
	ttl    time.Duration
	wait   time.Duration
}

func NewLocker(client *pkgredis.Client, ttl, wait time.Duration) *Locker {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if wait <= 0 {
		wait = 5 * time.Second
	}
	return &Locker{client: client, ttl: ttl, wait: wait}
}

func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	const operation = "redis.Locker.Lock"

	token := uuid.NewString()

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 20 * time.Millisecond
	policy.MaxInterval = 500 * time.Millisecond
	policy.MaxElapsedTime = l.wait

	err := backoff.Retry(func() error {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !ok {
			return errLockBusy
		}
		return nil
	}, backoff.WithContext(policy, ctx))

	switch {
	case errors.Is(err, errLockBusy):
		return nil, fmt.Errorf("%s: %s: %w", operation, key, ErrLockTimeout)
	case err != nil:
		return nil, fmt.Errorf("%s: %s: %w", operation, key, err)
	}

	return func() {
		// released even when the caller's context is already cancelled
		_, _ = l.client.RunScript(context.WithoutCancel(ctx), releaseScript, []string{key}, token)
	}, nil
}
