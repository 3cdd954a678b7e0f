package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("lock already held")

// releaseScript deletes the key only when it still carries the caller's token.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

type lockClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// Locker hands out short-lived exclusive leases stored in Redis.
type Locker struct {
	client lockClient
	prefix string
}

// Lease is a held lock. Release is idempotent.
type Lease struct {
	locker *Locker
	key    string
	token  string
}

// NewLocker builds a locker namespacing keys under prefix.
func NewLocker(client *redis.Client, prefix string) *Locker {
	if client == nil {
		return &Locker{prefix: prefix}
	}
	return &Locker{client: client, prefix: prefix}
}

func newLocker(client lockClient, prefix string) *Locker {
	return &Locker{client: client, prefix: prefix}
}

// Acquire takes the named lock for ttl or returns ErrLockHeld.
// A Locker without a client grants every lease.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (*Lease, error) {
	key := l.key(name)
	lease := &Lease{locker: l, key: key, token: uuid.NewString()}
	if l == nil || l.client == nil {
		return lease, nil
	}

	ok, err := l.client.SetNX(ctx, key, lease.token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return lease, nil
}

// Release frees the lease if it is still owned by this holder.
func (lease *Lease) Release(ctx context.Context) error {
	if lease == nil || lease.locker == nil || lease.locker.client == nil {
		return nil
	}
	if err := lease.locker.client.Eval(ctx, releaseScript, []string{lease.key}, lease.token).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("release lock %s: %w", lease.key, err)
	}
	return nil
}

func (l *Locker) key(name string) string {
	if l == nil || l.prefix == "" {
		return name
	}
	return l.prefix + ":" + name
}
