package keylock

import "sync"

// KeyLock serializes critical sections per string key. The reservation workflow
// holds the lock for a slot-instance key across its availability check and insert
// so two concurrent bookings of the same slot cannot both pass the check. The
// database's partial unique index remains the backstop for multi-process setups.
type KeyLock struct {
	mu    sync.Mutex
	locks map[string]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func New() *KeyLock {
	return &KeyLock{
		locks: map[string]*entry{},
	}
}

// Lock acquires the mutex for key, blocking until it is free.
func (k *KeyLock) Lock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock releases the mutex for key. Entries are dropped once no goroutine
// holds or waits on them, so the map does not grow with the key space.
func (k *KeyLock) Unlock(key string) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if ok {
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
	}
	k.mu.Unlock()

	if ok {
		e.mu.Unlock()
	}
}
