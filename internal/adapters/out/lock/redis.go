// Package lock provides ports.Locker implementations: a Redis lease shared by all
// replicas and an in-process one for single-node runs.
package lock

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockLost is returned by unlock when the lease expired and another holder took the key.
var ErrLockLost = errors.New("lock lost before release")

// releaseScript deletes the key only if it still holds this owner's token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker grants leases with SET NX PX.
type RedisLocker struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisLocker(client redis.UniversalClient, prefix string) *RedisLocker {
	return &RedisLocker{client: client, prefix: prefix}
}

func (l *RedisLocker) TryLock(
	ctx context.Context,
	key string,
	ttl time.Duration,
) (func(context.Context) error, bool, error) {
	key = l.prefix + key
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return nil, false, nil
	}

	return func(ctx context.Context) error {
		released, err := releaseScript.Run(ctx, l.client, []string{key}, token).Int64()
		if err != nil {
			return err
		}
		if released == 0 {
			return ErrLockLost
		}
		return nil
	}, true, nil
}
