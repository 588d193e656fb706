package cache

import (
	"context"
	"errors"
	"time"

	"github.com/bsm/redislock"
)

// Locker hands out short-lived cluster-wide locks, so only one API replica
// runs a scheduled job at a time.
type Locker struct {
	locker *redislock.Client
}

func NewLocker(client *Client) *Locker {
	return &Locker{locker: redislock.New(client.Redis)}
}

// TryLock returns ok=false without error when another holder has key.
func (l *Locker) TryLock(ctx context.Context, key string, ttl time.Duration) (release func(context.Context) error, ok bool, err error) {
	lock, err := l.locker.Obtain(ctx, key, ttl, nil)
	if errors.Is(err, redislock.ErrNotObtained) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return lock.Release, true, nil
}
