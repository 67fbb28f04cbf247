package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	b := m.Create("batch-1", "payment", "user-1")
	assert.Equal(t, "PROCESSING", b.Status)

	got, ok := m.Get("batch-1")
	require.True(t, ok)
	assert.Equal(t, "payment", got.RecordType)
	assert.Equal(t, "user-1", got.UserID)

	m.Finish("batch-1", "COMPLETED", map[string]int{"rows": 3})
	got, ok = m.Get("batch-1")
	require.True(t, ok)
	assert.Equal(t, "COMPLETED", got.Status)
	assert.NotNil(t, got.Report)
	assert.False(t, got.FinishedAt.IsZero())

	m.Delete("batch-1")
	_, ok = m.Get("batch-1")
	assert.False(t, ok)
}

func TestOnRemoveHook(t *testing.T) {
	m := NewManager()
	var removed []string
	m.SetOnRemove(func(id string) {
		removed = append(removed, id)
	})

	m.Create("batch-1", "payment", "user-1")
	m.Delete("batch-1")
	assert.Equal(t, []string{"batch-1"}, removed)

	m.Create("expired", "fine", "user-1")
	m.Finish("expired", "COMPLETED", nil)
	if b, ok := m.Get("expired"); ok {
		b.FinishedAt = time.Now().Add(-3 * time.Hour)
	}
	m.Create("running", "fine", "user-2")

	m.CleanupFinished(2 * time.Hour)
	assert.Equal(t, []string{"batch-1", "expired"}, removed,
		"hook fires for expired batches, never for running ones")
}

func TestCleanupFinished(t *testing.T) {
	m := NewManager()

	m.Create("old", "payment", "user-1")
	m.Finish("old", "COMPLETED", nil)
	if b, ok := m.Get("old"); ok {
		b.FinishedAt = time.Now().Add(-3 * time.Hour)
	}

	m.Create("fresh", "payment", "user-1")
	m.Finish("fresh", "COMPLETED", nil)

	m.Create("running", "fine", "user-2")

	removed := m.CleanupFinished(2 * time.Hour)
	assert.Equal(t, 1, removed)

	_, ok := m.Get("old")
	assert.False(t, ok)
	_, ok = m.Get("fresh")
	assert.True(t, ok)
	_, ok = m.Get("running")
	assert.True(t, ok, "running batches are never cleaned up")
}
