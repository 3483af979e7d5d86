package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// RenderKey builds the cache key for a rendered image. The token is
// already a content address of the normalized diagram source; format and
// scheme are folded in because the same source renders to different bytes
// per output format and per server protocol.
func RenderKey(token, format, scheme string) string {
	return fmt.Sprintf("render:%s", Hash([]byte(scheme+":"+format+":"+token)))
}
