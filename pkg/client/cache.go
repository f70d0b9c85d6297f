package client

import (
	"sync"
	"time"
)

// KeyTasks is the store key for the task collection.
const KeyTasks = "tasks"

// DefaultStaleAfter bounds how long a confirmed snapshot counts as fresh.
const DefaultStaleAfter = 30 * time.Second

// Store holds the last known server-confirmed collections, keyed by
// collection name. Any number of readers may call Snapshot and Fresh
// concurrently; writes happen only through the Engine. A Store is an
// explicit dependency, constructed and injected, never a package global.
type Store struct {
	mu         sync.RWMutex
	staleAfter time.Duration
	entries    map[string]*storeEntry
}

type storeEntry struct {
	rows []Task
	// refreshedAt tracks the last full server confirmation. Speculative
	// writes and single-entity settlements leave it alone.
	refreshedAt time.Time
}

// NewStore creates an empty store. staleAfter <= 0 selects
// DefaultStaleAfter.
func NewStore(staleAfter time.Duration) *Store {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &Store{
		staleAfter: staleAfter,
		entries:    map[string]*storeEntry{},
	}
}

// Snapshot returns a deep copy of the collection under key. Mutating the
// returned slice never affects the store. ok is false when the key has
// never been populated.
func (s *Store) Snapshot(key string) (rows []Task, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return nil, false
	}
	return cloneTasks(e.rows), true
}

// Fresh reports whether the collection under key was server-confirmed
// within the staleness window. A stale key permits a background refresh;
// it never blocks a read.
func (s *Store) Fresh(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	return time.Since(e.refreshedAt) < s.staleAfter
}

// replace installs a server-confirmed collection and resets the freshness
// clock. Engine use only.
func (s *Store) replace(key string, rows []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = &storeEntry{
		rows:        cloneTasks(rows),
		refreshedAt: time.Now(),
	}
}

// write installs rows without touching the freshness clock. Used for
// speculative applies, rollbacks and single-entity settlements, none of
// which constitute a full server confirmation.
func (s *Store) write(key string, rows []Task) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		e = &storeEntry{}
		s.entries[key] = e
	}
	e.rows = cloneTasks(rows)
}
