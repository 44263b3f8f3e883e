// Package fileid derives stable keys for files seen by the upload inbox.
package fileid

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"
)

const (
	contentPrefix = "sha256:"
	pathPrefix    = "file:"
)

// ContentID returns a key for content. Identical bytes always give the same
// key regardless of file name, so a copied or renamed PDF is recognised.
func ContentID(content []byte) string {
	hash := sha256.Sum256(content)
	return contentPrefix + hex.EncodeToString(hash[:])
}

// PathID returns a key for a cleaned path. The inbox uses it to debounce
// events per file.
func PathID(path string) string {
	normalized := filepath.Clean(path)
	hash := sha256.Sum256([]byte(normalized))
	return pathPrefix + hex.EncodeToString(hash[:])
}
