package checksum

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFileHash(t *testing.T) {
	a := FileHash([]byte("external_ref,amount\nTXN-1,500.00\n"))
	b := FileHash([]byte("external_ref,amount\nTXN-1,500.00\n"))
	c := FileHash([]byte("external_ref,amount\nTXN-2,500.00\n"))

	assert.Equal(t, a, b, "same bytes, same hash")
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 64)
}
