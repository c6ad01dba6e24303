// Package session keeps the current batch of each session between requests.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/entity"
	"github.com/joseph-ayodele/workorders-tracker/internal/pipeline"
)

// Store holds at most one batch per session.
type Store interface {
	Get(ctx context.Context, sessionID string) (pipeline.Batch, error)
	Replace(ctx context.Context, sessionID string, batch pipeline.Batch) error
	UpdateRecords(ctx context.Context, sessionID string, records []entity.WorkOrder) (pipeline.Batch, error)
	Delete(ctx context.Context, sessionID string) error
}

const DefaultTTL = 24 * time.Hour

type memoryEntry struct {
	batch   pipeline.Batch
	expires time.Time
}

// MemoryStore keeps batches in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{ttl: ttl, now: time.Now, entries: make(map[string]memoryEntry)}
}

func (m *MemoryStore) Get(_ context.Context, sessionID string) (pipeline.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(sessionID)
	if !ok {
		return pipeline.Batch{}, common.ErrNotFound
	}
	return e.batch, nil
}

func (m *MemoryStore) Replace(_ context.Context, sessionID string, batch pipeline.Batch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	m.entries[sessionID] = memoryEntry{batch: batch, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) UpdateRecords(_ context.Context, sessionID string, records []entity.WorkOrder) (pipeline.Batch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.live(sessionID)
	if !ok {
		return pipeline.Batch{}, common.ErrNotFound
	}
	e.batch = e.batch.WithRecords(records)
	e.expires = m.now().Add(m.ttl)
	m.entries[sessionID] = e
	return e.batch, nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, sessionID)
	return nil
}

// live must be called with mu held.
func (m *MemoryStore) live(sessionID string) (memoryEntry, bool) {
	e, ok := m.entries[sessionID]
	if !ok {
		return memoryEntry{}, false
	}
	if m.now().After(e.expires) {
		delete(m.entries, sessionID)
		return memoryEntry{}, false
	}
	return e, true
}

// sweep drops expired entries; must be called with mu held.
func (m *MemoryStore) sweep() {
	now := m.now()
	for id, e := range m.entries {
		if now.After(e.expires) {
			delete(m.entries, id)
		}
	}
}
