package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory (token -> session).
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	onCount  func(int)
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// OnCount registers a callback receiving the live session count after each
// create, delete or sweep.
func (m *MemoryStore) OnCount(fn func(int)) {
	m.mu.Lock()
	m.onCount = fn
	m.mu.Unlock()
}

func (m *MemoryStore) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok || s.Expired(time.Now()) {
		return nil, ErrNotFound
	}
	return s.Clone(), nil
}

func (m *MemoryStore) Create(ctx context.Context) (*Session, error) {
	s := New(uuid.New().String(), m.ttl)
	m.mu.Lock()
	m.sessions[s.ID] = s.Clone()
	m.notify()
	m.mu.Unlock()
	return s, nil
}

// Save stores a copy of s and refreshes its expiry. Concurrent requests of
// the same session overwrite each other.
func (m *MemoryStore) Save(ctx context.Context, s *Session) error {
	s.ExpiresAt = time.Now().Add(m.ttl)
	m.mu.Lock()
	m.sessions[s.ID] = s.Clone()
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	delete(m.sessions, id)
	m.notify()
	m.mu.Unlock()
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (m *MemoryStore) Sweep(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, s := range m.sessions {
		if s.Expired(now) {
			delete(m.sessions, id)
			removed++
		}
	}
	if removed > 0 {
		m.notify()
	}
	return removed
}

// RunSweeper calls Sweep every interval until ctx is done.
func (m *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// notify must be called with mu held.
func (m *MemoryStore) notify() {
	if m.onCount != nil {
		m.onCount(len(m.sessions))
	}
}
