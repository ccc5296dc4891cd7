package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// KeyType returns the prefix of a key produced by a Keyer ("layout",
// "artifact"), ignoring any scope prefix.
func KeyType(key string) string {
	end := len(key)
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == ':' {
			end = i
			break
		}
	}
	start := 0
	for i := end - 1; i >= 0; i-- {
		if key[i] == ':' {
			start = i + 1
			break
		}
	}
	if end <= start {
		return "unknown"
	}
	return key[start:end]
}
