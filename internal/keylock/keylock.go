// Package keylock provides a process-local, non-blocking lock keyed by string.
package keylock

import "sync"

// KeyLock tracks which keys are currently held.
// It is advisory and scoped to a single process.
type KeyLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// New creates an empty KeyLock.
func New() *KeyLock {
	return &KeyLock{held: make(map[string]struct{})}
}

// TryAcquire takes key if it is free. On success it returns a release
// function that is safe to call more than once; callers should defer it.
func (l *KeyLock) TryAcquire(key string) (release func(), ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, busy := l.held[key]; busy {
		return nil, false
	}
	l.held[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, key)
			l.mu.Unlock()
		})
	}, true
}

// Held reports whether key is currently held.
func (l *KeyLock) Held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.held[key]
	return ok
}

// Len returns the number of held keys.
func (l *KeyLock) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.held)
}
