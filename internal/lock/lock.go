// Package lock guards booking critical sections per availability slot.
package lock

import (
	"context"
	"errors"
	"sync"
)

var ErrLockNotAcquired = errors.New("slot lock not acquired")

// Locker is used by the appointment service to guard critical sections per slot
type Locker interface {
	WithSlotLock(ctx context.Context, slotID uint, fn func(ctx context.Context) error) error
}

type localSlotLocker struct {
	mu    sync.Mutex
	slots map[uint]*slotMutex
}

type slotMutex struct {
	mu   sync.Mutex
	refs int
}

// NewLocalSlotLocker returns an in-process Locker for single-instance
// deployments. Callers for the same slot wait for each other instead of
// failing.
func NewLocalSlotLocker() Locker {
	return &localSlotLocker{slots: make(map[uint]*slotMutex)}
}

func (l *localSlotLocker) WithSlotLock(ctx context.Context, slotID uint, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := l.acquire(slotID)
	defer l.release(slotID, m)

	return fn(ctx)
}

func (l *localSlotLocker) acquire(slotID uint) *slotMutex {
	l.mu.Lock()
	m, ok := l.slots[slotID]
	if !ok {
		m = &slotMutex{}
		l.slots[slotID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()
	return m
}

func (l *localSlotLocker) release(slotID uint, m *slotMutex) {
	m.mu.Unlock()

	l.mu.Lock()
	m.refs--
	if m.refs == 0 {
		delete(l.slots, slotID)
	}
	l.mu.Unlock()
}
