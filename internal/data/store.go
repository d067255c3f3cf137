package data

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"der-reliability/internal/engine"
)

// Evaluation is a finished run kept for later retrieval.
type Evaluation struct {
	ID        string
	CreatedAt time.Time
	Results   []*engine.Result
}

type storeEntry struct {
	evaluation *Evaluation
	expiresAt  time.Time
}

// ResultStore keeps evaluations in memory until their TTL runs out.
type ResultStore struct {
	mu    sync.RWMutex
	store map[string]*storeEntry
	ttl   time.Duration
	now   func() time.Time
}

func NewResultStore(ttl time.Duration) *ResultStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &ResultStore{
		store: make(map[string]*storeEntry),
		ttl:   ttl,
		now:   time.Now,
	}
}

// Put stores results under a fresh ID.
func (s *ResultStore) Put(results ...*engine.Result) *Evaluation {
	now := s.now()
	ev := &Evaluation{
		ID:        uuid.NewString(),
		CreatedAt: now,
		Results:   results,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[ev.ID] = &storeEntry{evaluation: ev, expiresAt: now.Add(s.ttl)}
	return ev
}

// Get returns the evaluation if it exists and has not expired.
func (s *ResultStore) Get(id string) (*Evaluation, bool) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.store[id]
	if !ok || s.now().After(entry.expiresAt) {
		return nil, false
	}
	return entry.evaluation, true
}

func (s *ResultStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.store)
}

// Sweep removes expired entries and reports how many were dropped.
func (s *ResultStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, entry := range s.store {
		if now.After(entry.expiresAt) {
			delete(s.store, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *ResultStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep()
		case <-ctx.Done():
			return
		}
	}
}
