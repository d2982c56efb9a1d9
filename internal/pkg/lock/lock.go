// Package lock provides keyed locking for read-merge-write updates.
package lock

import (
	"context"
	"sync"
	"time"
)

// slot is a one-token semaphore shared by every waiter on the same key.
type slot struct {
	ch   chan struct{}
	refs int
}

// KeyedLock serializes work per key. Keys with no holders or waiters are
// dropped from the map so the table stays proportional to active users.
type KeyedLock struct {
	mu    sync.Mutex
	slots map[string]*slot
}

// NewKeyedLock creates a new KeyedLock instance.
func NewKeyedLock() *KeyedLock {
	return &KeyedLock{slots: make(map[string]*slot)}
}

func (l *KeyedLock) acquire(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *KeyedLock) release(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()

	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}

// Unlock releases the lock for key. Unlocking a key that is not held is a no-op.
func (l *KeyedLock) Unlock(key string) {
	l.mu.Lock()
	s, ok := l.slots[key]
	l.mu.Unlock()
	if !ok {
		return
	}

	select {
	case <-s.ch:
		l.release(key, s)
	default:
	}
}

// LockContext waits for the lock until timeout elapses or ctx is done.
func (l *KeyedLock) LockContext(ctx context.Context, key string, timeout time.Duration) error {
	s := l.acquire(key)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-timer.C:
		l.release(key, s)
		return ErrLockTimeout
	case <-ctx.Done():
		l.release(key, s)
		return ctx.Err()
	}
}

// WithLockContext executes fn while holding the lock for key, giving up
// after timeout or when ctx is cancelled.
func (l *KeyedLock) WithLockContext(ctx context.Context, key string, timeout time.Duration, fn func() error) error {
	if err := l.LockContext(ctx, key, timeout); err != nil {
		return err
	}
	defer l.Unlock(key)
	return fn()
}

// Len returns the number of keys with a holder or waiter.
func (l *KeyedLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
