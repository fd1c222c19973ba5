package core

import "sync"

type lockEntry struct {
	mutex sync.Mutex
	refs  int
}

// keyedLocks serializes work per key, e.g. one chat or one payment id.
// An entry lives only while someone holds or waits for it.
type keyedLocks struct {
	mutex sync.Mutex
	locks map[string]*lockEntry
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{locks: make(map[string]*lockEntry)}
}

func (l *keyedLocks) Lock(key string) {
	l.mutex.Lock()
	entry, exists := l.locks[key]
	if !exists {
		entry = &lockEntry{}
		l.locks[key] = entry
	}
	entry.refs++
	l.mutex.Unlock()

	entry.mutex.Lock()
}

func (l *keyedLocks) Unlock(key string) {
	l.mutex.Lock()
	entry, exists := l.locks[key]
	if !exists {
		l.mutex.Unlock()
		return
	}
	entry.refs--
	if entry.refs == 0 {
		delete(l.locks, key)
	}
	l.mutex.Unlock()

	entry.mutex.Unlock()
}

func (l *keyedLocks) size() int {
	l.mutex.Lock()
	defer l.mutex.Unlock()
	return len(l.locks)
}
