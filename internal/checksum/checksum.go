package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// FileHash returns the sha256 hex digest of an uploaded batch file.
// The digest is stored per batch so re-uploading the identical file is
// rejected before any row is processed.
func FileHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
