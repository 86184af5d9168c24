package memory

import (
	"context"
	"sync"

	"github.com/dwikikusuma/storefront/internal/cart/app"
)

// SnapshotStore keeps cart snapshots in process memory. Snapshots do not
// survive a restart.
type SnapshotStore struct {
	mu    sync.RWMutex
	store map[string][]byte
}

func NewSnapshotStore() *SnapshotStore {
	return &SnapshotStore{store: make(map[string][]byte)}
}

func (m *SnapshotStore) Read(ctx context.Context, sessionID string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, ok := m.store[sessionID]
	if !ok {
		return nil, app.ErrSnapshotNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *SnapshotStore) Write(ctx context.Context, sessionID string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.store[sessionID] = append([]byte(nil), data...)
	return nil
}

func (m *SnapshotStore) Ping(ctx context.Context) bool { return true }
