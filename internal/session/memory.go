package session

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore keeps sessions in process memory. Sessions do not survive a restart,
// so it's meant for local development and tests.
type MemoryStore struct {
	sessions map[uuid.UUID]Session
	mu       sync.RWMutex
}

// NewMemoryStore initializes an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[uuid.UUID]Session),
	}
}

func (m *MemoryStore) Get(ctx context.Context, id uuid.UUID) (Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.sessions[id], nil
}

func (m *MemoryStore) Put(ctx context.Context, id uuid.UUID, s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[id] = s
	return nil
}

func (m *MemoryStore) ClearAccessToken(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.AccessToken = ""
		m.sessions[id] = s
	}
	return nil
}

func (m *MemoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

var _ Store = (*MemoryStore)(nil)
