package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// TestSerializedUpdatesProperty checks that concurrent read-modify-write
// sequences on one key end with the same result as running them in order.
func TestSerializedUpdatesProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		initial := rapid.Int64Range(-10000, 10000).Draw(t, "initial")
		deltas := rapid.SliceOfN(rapid.Int64Range(-500, 500), 2, 20).Draw(t, "deltas")
		key := rapid.StringMatching(`[a-z0-9-]{1,16}`).Draw(t, "key")

		expected := initial
		for _, d := range deltas {
			expected += d
		}

		kl := NewKeyedLock()
		value := initial

		var wg sync.WaitGroup
		errs := make(chan error, len(deltas))
		wg.Add(len(deltas))
		for _, d := range deltas {
			go func(delta int64) {
				defer wg.Done()
				errs <- kl.WithLockContext(context.Background(), key, 10*time.Second, func() error {
					current := value
					value = current + delta
					return nil
				})
			}(d)
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			if err != nil {
				t.Fatalf("lock failed: %v", err)
			}
		}
		if value != expected {
			t.Fatalf("value mismatch: expected %d, got %d", expected, value)
		}
		if kl.Len() != 0 {
			t.Fatalf("expected no tracked keys after release, got %d", kl.Len())
		}
	})
}

// TestIndependentKeysProperty checks that holding one key never blocks another.
func TestIndependentKeysProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(2, 10).Draw(t, "keys")
		kl := NewKeyedLock()
		ctx := context.Background()

		for i := 0; i < n; i++ {
			if err := kl.LockContext(ctx, fmt.Sprintf("user-%d", i), 100*time.Millisecond); err != nil {
				t.Fatalf("user-%d should be free: %v", i, err)
			}
		}
		if kl.Len() != n {
			t.Fatalf("expected %d tracked keys, got %d", n, kl.Len())
		}
		if err := kl.LockContext(ctx, "user-0", time.Millisecond); !errors.Is(err, ErrLockTimeout) {
			t.Fatalf("held key should time out, got %v", err)
		}
		for i := 0; i < n; i++ {
			kl.Unlock(fmt.Sprintf("user-%d", i))
		}
		if kl.Len() != 0 {
			t.Fatalf("expected no tracked keys, got %d", kl.Len())
		}
	})
}

func TestLockContextTimeout(t *testing.T) {
	kl := NewKeyedLock()
	ctx := context.Background()
	require.NoError(t, kl.LockContext(ctx, "alice", time.Second))

	err := kl.LockContext(ctx, "alice", 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)

	kl.Unlock("alice")
	require.NoError(t, kl.LockContext(ctx, "alice", time.Second))
	kl.Unlock("alice")
	assert.Equal(t, 0, kl.Len())
}

func TestLockContextCancelled(t *testing.T) {
	kl := NewKeyedLock()
	require.NoError(t, kl.LockContext(context.Background(), "bob", time.Second))
	defer kl.Unlock("bob")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := kl.WithLockContext(ctx, "bob", time.Second, func() error {
		t.Fatal("fn must not run without the lock")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWithLockContextReturnsFnError(t *testing.T) {
	kl := NewKeyedLock()
	boom := errors.New("boom")

	err := kl.WithLockContext(context.Background(), "carol", time.Second, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, kl.Len())
}

func TestUnlockWithoutLock(t *testing.T) {
	kl := NewKeyedLock()
	kl.Unlock("nobody")
	assert.Equal(t, 0, kl.Len())
}
