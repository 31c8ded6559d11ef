package artifact

import (
	"context"
	"sync"
)

// Store keeps per-job debugging artifacts (rendered prompt, raw model
// response). Writes are best-effort; the job pipeline never fails on an
// artifact error.
type Store interface {
	Put(ctx context.Context, jobID, path string, content []byte) error
}

// NopStore discards artifacts. Used when no artifact backend is
// configured.
type NopStore struct{}

func (NopStore) Put(context.Context, string, string, []byte) error { return nil }

// MemoryStore keeps artifacts in a map keyed by "jobID/path". Used in
// tests and local runs without minio.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string][]byte)}
}

func (m *MemoryStore) Put(_ context.Context, jobID, path string, content []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[jobID+"/"+path] = append([]byte(nil), content...)
	return nil
}

// Get returns a stored artifact. Test helper.
func (m *MemoryStore) Get(jobID, path string) ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.objects[jobID+"/"+path]
	return b, ok
}
