package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedisLocker(t *testing.T) (Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr(), "", "")
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisSlotLocker(client, 5*time.Second), mr
}

func TestRedisSlotLockerRunsAndReleases(t *testing.T) {
	locker, mr := newTestRedisLocker(t)

	ran := false
	err := locker.WithSlotLock(context.Background(), 7, func(ctx context.Context) error {
		ran = true
		assert.True(t, mr.Exists(slotKey(7)))
		return nil
	})
	require.NoError(t, err)
	assert.True(t, ran)
	assert.False(t, mr.Exists(slotKey(7)), "lock key should be deleted after release")
}

func TestRedisSlotLockerRejectsHeldSlot(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	require.NoError(t, mr.Set(slotKey(3), "someone-else"))

	called := false
	err := locker.WithSlotLock(context.Background(), 3, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrLockNotAcquired)
	assert.False(t, called)

	got, _ := mr.Get(slotKey(3))
	assert.Equal(t, "someone-else", got, "a foreign lock must not be released")
}

func TestRedisSlotLockerPropagatesCallbackError(t *testing.T) {
	locker, mr := newTestRedisLocker(t)
	boom := errors.New("boom")

	err := locker.WithSlotLock(context.Background(), 1, func(ctx context.Context) error {
		return boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists(slotKey(1)))
}

func TestRedisSlotLockerIndependentSlots(t *testing.T) {
	locker, _ := newTestRedisLocker(t)

	err := locker.WithSlotLock(context.Background(), 1, func(ctx context.Context) error {
		return locker.WithSlotLock(ctx, 2, func(ctx context.Context) error { return nil })
	})
	assert.NoError(t, err)
}

func TestLocalSlotLockerSerializesSameSlot(t *testing.T) {
	locker := NewLocalSlotLocker()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		inside  int
		maxSeen int
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = locker.WithSlotLock(context.Background(), 42, func(ctx context.Context) error {
				mu.Lock()
				inside++
				if inside > maxSeen {
					maxSeen = inside
				}
				mu.Unlock()

				time.Sleep(time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Empty(t, locker.(*localSlotLocker).slots, "idle slots should be forgotten")
}

func TestLocalSlotLockerHonoursCancelledContext(t *testing.T) {
	locker := NewLocalSlotLocker()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := locker.WithSlotLock(ctx, 1, func(ctx context.Context) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}
