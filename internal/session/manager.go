package session

import (
	"sync"
	"time"
)

// Batch is the in-memory state of one import batch. It exists from the
// moment an upload is accepted until the janitor drops it after the
// retention window; nothing here is persisted.
type Batch struct {
	ID         string
	RecordType string
	UserID     string
	StartedAt  time.Time
	FinishedAt time.Time
	Status     string
	Report     interface{}
}

// Manager is the registry of known import batches. One Batch entry is
// created per upload and carries the finished report for later reads.
type Manager struct {
	batches  map[string]*Batch
	mu       sync.Mutex
	onRemove func(id string)
}

func NewManager() *Manager {
	return &Manager{
		batches: make(map[string]*Batch),
	}
}

func (m *Manager) Create(id, recordType, userID string) *Batch {
	m.mu.Lock()
	defer m.mu.Unlock()

	b := &Batch{
		ID:         id,
		RecordType: recordType,
		UserID:     userID,
		StartedAt:  time.Now(),
		Status:     "PROCESSING",
	}
	m.batches[id] = b
	return b
}

// Finish marks a batch terminal and attaches its report.
func (m *Manager) Finish(id, status string, report interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if b, ok := m.batches[id]; ok {
		b.Status = status
		b.Report = report
		b.FinishedAt = time.Now()
	}
}

func (m *Manager) Get(id string) (*Batch, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	b, ok := m.batches[id]
	return b, ok
}

// SetOnRemove installs a callback invoked after a batch leaves the
// registry, so per-batch state held elsewhere (event buffers) is
// dropped with it.
func (m *Manager) SetOnRemove(fn func(id string)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onRemove = fn
}

func (m *Manager) Delete(id string) {
	m.mu.Lock()
	delete(m.batches, id)
	fn := m.onRemove
	m.mu.Unlock()

	if fn != nil {
		fn(id)
	}
}

// CleanupFinished drops terminal batches older than the retention window
// and returns how many were removed.
func (m *Manager) CleanupFinished(retention time.Duration) int {
	m.mu.Lock()
	var removed []string
	cutoff := time.Now().Add(-retention)
	for id, b := range m.batches {
		if b.Status == "PROCESSING" {
			continue
		}
		if !b.FinishedAt.IsZero() && b.FinishedAt.Before(cutoff) {
			delete(m.batches, id)
			removed = append(removed, id)
		}
	}
	fn := m.onRemove
	m.mu.Unlock()

	if fn != nil {
		for _, id := range removed {
			fn(id)
		}
	}
	return len(removed)
}
