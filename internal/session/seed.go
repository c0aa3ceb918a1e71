// Package session persists the per-session spotlight seed so suggestion
// order is stable across renders within a session and varies between them.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/blackwell-systems/chapterdesk/internal/shuffle"
)

// SeedKey is the fixed key the seed is stored under within a session.
const SeedKey = "spotlight_seed"

// ErrNoSession is returned when a seed is requested without a session ID.
var ErrNoSession = errors.New("session id is required")

// SeedStore stores one seed per session.
type SeedStore interface {
	// GetOrCreate returns the stored seed for the session, storing candidate
	// first if none exists yet.
	GetOrCreate(ctx context.Context, sessionID string, candidate int64) (int64, error)
}

// SeedFor returns the session's seed, generating one on first use.
func SeedFor(ctx context.Context, store SeedStore, sessionID string) (int64, error) {
	if sessionID == "" {
		return 0, ErrNoSession
	}
	seed, err := store.GetOrCreate(ctx, sessionID, shuffle.NewSeed())
	if err != nil {
		return 0, fmt.Errorf("loading %s for session: %w", SeedKey, err)
	}
	return seed, nil
}

type memEntry struct {
	seed    int64
	expires time.Time
}

// MemoryStore keeps seeds in process memory. Entries expire after ttl; a
// zero ttl keeps them for the life of the process.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]memEntry
	now     func() time.Time
}

// NewMemoryStore creates an empty in-memory seed store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		entries: make(map[string]memEntry),
		now:     time.Now,
	}
}

func (s *MemoryStore) GetOrCreate(_ context.Context, sessionID string, candidate int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if e, ok := s.entries[sessionID]; ok && (e.expires.IsZero() || now.Before(e.expires)) {
		return e.seed, nil
	}
	e := memEntry{seed: candidate}
	if s.ttl > 0 {
		e.expires = now.Add(s.ttl)
	}
	s.entries[sessionID] = e
	return candidate, nil
}

// Len reports how many sessions currently hold a seed, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired entries.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	dropped := 0
	for id, e := range s.entries {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(s.entries, id)
			dropped++
		}
	}
	return dropped
}
