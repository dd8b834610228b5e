package store

import (
	"context"
	"sync"
)

// Locker hands out one mutex per record id. Entries are dropped once no
// caller holds or waits for them.
type Locker struct {
	locks map[string]*idLock
	mu    sync.Mutex
}

type idLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*idLock)}
}

// Lock blocks until id is free and returns the func releasing it.
func (l *Locker) Lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &idLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	var once sync.Once
	return func() {
		once.Do(func() {
			entry.mu.Unlock()

			l.mu.Lock()
			entry.refs--
			if entry.refs == 0 {
				delete(l.locks, id)
			}
			l.mu.Unlock()
		})
	}
}

// Held returns the number of ids currently locked or waited on.
func (l *Locker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}

// Shared wraps a Store with per-record locks. Put stays lock-free; callers
// doing a read-modify-write hold Lock(id) around their Get and Put.
// SetFavorite and Remove take the same lock, so a favorite toggle cannot be
// erased by a concurrent append.
type Shared struct {
	Store
	locks *Locker
}

var _ LockingStore = (*Shared)(nil)

// NewShared wraps s.
func NewShared(s Store) *Shared {
	return &Shared{Store: s, locks: NewLocker()}
}

// Lock implements LockingStore.
func (s *Shared) Lock(id string) func() {
	return s.locks.Lock(id)
}

// Remove implements Store.
func (s *Shared) Remove(ctx context.Context, id string) error {
	defer s.Lock(id)()
	return s.Store.Remove(ctx, id)
}

// SetFavorite implements Store.
func (s *Shared) SetFavorite(ctx context.Context, id string, favorite bool) error {
	defer s.Lock(id)()
	return s.Store.SetFavorite(ctx, id, favorite)
}
