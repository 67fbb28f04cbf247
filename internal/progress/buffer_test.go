package progress

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuffer(t *testing.T) {
	b := NewBuffer()

	b.Add(Event{Type: "row", BatchID: "batch-1", RowIndex: 1, Outcome: "assigned"})
	b.Add(Event{Type: "row", BatchID: "batch-1", RowIndex: 2, Outcome: "rejected"})
	b.Add(Event{Type: "row", BatchID: "batch-2", RowIndex: 1, Outcome: "assigned"})

	events := b.Snapshot("batch-1")
	require.Len(t, events, 2)
	assert.Equal(t, 1, events[0].RowIndex)
	assert.Equal(t, "rejected", events[1].Outcome)

	assert.Len(t, b.Snapshot("batch-2"), 1)
	assert.Empty(t, b.Snapshot("unknown"))

	// Snapshot hands out a copy.
	events[0].Outcome = "mutated"
	assert.Equal(t, "assigned", b.Snapshot("batch-1")[0].Outcome)

	b.Clear("batch-1")
	assert.Empty(t, b.Snapshot("batch-1"))
	assert.Len(t, b.Snapshot("batch-2"), 1)
}
