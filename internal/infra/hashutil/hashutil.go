// Package hashutil derives the ETags and content versions that let the
// registry detect what changed between scans.
package hashutil

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// ListETag hashes items for the list called label. An unhashable list yields
// an empty ETag, which never matches a previous one.
func ListETag[T any](logger *zap.Logger, label string, items []T) string {
	etag, err := HashList(items)
	if err != nil {
		if logger != nil {
			logger.Warn("list etag failed", zap.String("list", label), zap.Error(err))
		}
		return ""
	}
	return etag
}

// HashList is order sensitive: each item's JSON encoding is fed to SHA-256
// followed by a NUL separator.
func HashList[T any](items []T) (string, error) {
	h := sha256.New()
	for i := range items {
		raw, err := json.Marshal(items[i])
		if err != nil {
			return "", fmt.Errorf("item %d: %w", i, err)
		}
		h.Write(append(raw, 0))
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// ContentHash is the first 8 bytes of the SHA-256 of data, hex encoded.
func ContentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
