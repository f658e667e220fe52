// Package fileid provides a deterministic content hash for uploaded
// reports, used for per-user duplicate detection.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
)

// ContentHash returns a stable hex digest of the file content. Same
// bytes always yield the same hash regardless of filename.
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
