package util

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest returns a deterministic hex digest of the given payload.
// Used to checksum archived and ingested snapshots.
func Digest(payload []byte) string {
	hash := sha256.Sum256(payload)
	return hex.EncodeToString(hash[:])
}
