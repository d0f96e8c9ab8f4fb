// Package cache memoizes finished analysis reports so repeated audits of an
// unchanged relationship dump skip the parse and detection work.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// Cache defines the interface for report caching.
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// FileKey derives a cache key from the identity of an input file and the
// requested analysis. Size and modification time are part of the key, so a
// rewritten dump never hits a stale entry.
func FileKey(path string, analysis string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat input: %w", err)
	}

	raw := fmt.Sprintf("%s|%d|%d|%s", path, info.Size(), info.ModTime().UnixNano(), analysis)
	hash := sha256.Sum256([]byte(raw))
	return "relcheck:v1:" + hex.EncodeToString(hash[:]), nil
}
