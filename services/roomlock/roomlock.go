// Package roomlock serializes work on a single room.
package roomlock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// ErrTimeout is returned when a room lock is not acquired within the wait bound.
var ErrTimeout = errors.New("timed out waiting for room lock")

// Locker serializes read-then-write sequences per room. Different rooms never
// contend.
type Locker interface {
	Lock(ctx context.Context, roomID int64) (unlock func(), err error)
}

// LocalLocker is an in-process keyed mutex.
type LocalLocker struct {
	wait  time.Duration
	mu    sync.Mutex
	slots map[int64]chan struct{}
}

func NewLocal(wait time.Duration) *LocalLocker {
	return &LocalLocker{wait: wait, slots: make(map[int64]chan struct{})}
}

func (l *LocalLocker) slot(roomID int64) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.slots[roomID]
	if !ok {
		ch = make(chan struct{}, 1)
		l.slots[roomID] = ch
	}
	return ch
}

func (l *LocalLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	ch := l.slot(roomID)
	timer := time.NewTimer(l.wait)
	defer timer.Stop()

	select {
	case ch <- struct{}{}:
		var once sync.Once
		return func() { once.Do(func() { <-ch }) }, nil
	case <-timer.C:
		return nil, fmt.Errorf("room %d: %w", roomID, ErrTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisLocker is a per-room lease shared by every replica using the same
// Redis. The lease expires after ttl so a crashed holder cannot wedge a room.
type RedisLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	retry  time.Duration
}

func NewRedis(client *redis.Client, ttl, wait time.Duration) *RedisLocker {
	return &RedisLocker{client: client, ttl: ttl, wait: wait, retry: 50 * time.Millisecond}
}

func roomLockKey(roomID int64) string {
	return fmt.Sprintf("innkeeper:lock:room:%d", roomID)
}

func (l *RedisLocker) Lock(ctx context.Context, roomID int64) (func(), error) {
	key := roomLockKey(roomID)
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock for room %d: %w", roomID, err)
		}
		if ok {
			return func() {
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("room %d: %w", roomID, ErrTimeout)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.retry):
		}
	}
}
