package progress

import (
	"sync"
)

// Buffer collects the events of batches that finished before anyone
// subscribed, so GET /recon/batches/{id}/events can replay them.
type Buffer struct {
	mu     sync.Mutex
	events map[string][]Event
}

func NewBuffer() *Buffer {
	return &Buffer{
		events: make(map[string][]Event),
	}
}

func (b *Buffer) Add(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[ev.BatchID] = append(b.events[ev.BatchID], ev)
}

func (b *Buffer) Snapshot(batchID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	evs := b.events[batchID]
	out := make([]Event, len(evs))
	copy(out, evs)
	return out
}

func (b *Buffer) Clear(batchID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.events, batchID)
}
