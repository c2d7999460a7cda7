package syncs

import (
	"context"
	"fmt"
	"sync"
)

// KeyLocker provides per-key mutual exclusion.
// See [KeyLock] for an implementation.
type KeyLocker interface {
	Lock(ctx context.Context, key string) error
	TryLock(key string) bool
	Unlock(key string)
}

// keyEntry is a one-slot semaphore shared by everyone using the same key.
type keyEntry struct {
	sem  chan struct{}
	refs int
}

// KeyLock is a per-key mutex that allows independent keys to be locked
// concurrently while serializing access to the same key. Create instances with
// [NewKeyLock], or use the zero value directly.
//
// Entries exist only while a key is held or awaited.
type KeyLock struct {
	locks map[string]*keyEntry
	mu    sync.Mutex
}

// NewKeyLock creates a new [KeyLock].
func NewKeyLock() *KeyLock {
	return &KeyLock{
		locks: make(map[string]*keyEntry),
	}
}

func (kl *KeyLock) acquire(key string) *keyEntry {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	if kl.locks == nil {
		kl.locks = make(map[string]*keyEntry)
	}

	e, ok := kl.locks[key]
	if !ok {
		e = &keyEntry{sem: make(chan struct{}, 1)}
		kl.locks[key] = e
	}

	e.refs++

	return e
}

func (kl *KeyLock) release(key string, e *keyEntry) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(kl.locks, key)
	}
}

// Lock acquires the lock for key, blocking while another caller holds it.
// It returns an error wrapping ctx.Err() if ctx ends first, in which case
// the lock is not held.
func (kl *KeyLock) Lock(ctx context.Context, key string) error {
	e := kl.acquire(key)

	select {
	case e.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		kl.release(key, e)

		return fmt.Errorf("lock %q: %w", key, ctx.Err())
	}
}

// TryLock acquires the lock for key if it is free and reports whether it
// did.
func (kl *KeyLock) TryLock(key string) bool {
	e := kl.acquire(key)

	select {
	case e.sem <- struct{}{}:
		return true
	default:
		kl.release(key, e)

		return false
	}
}

// Unlock releases the lock for key. Unlocking a key that is not locked
// panics.
func (kl *KeyLock) Unlock(key string) {
	kl.mu.Lock()
	e, ok := kl.locks[key]
	kl.mu.Unlock()

	if !ok {
		panic(fmt.Sprintf("syncs: unlock of unlocked key %q", key))
	}

	select {
	case <-e.sem:
	default:
		panic(fmt.Sprintf("syncs: unlock of unlocked key %q", key))
	}

	kl.release(key, e)
}

// Len returns the number of keys currently held or awaited.
func (kl *KeyLock) Len() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	return len(kl.locks)
}
