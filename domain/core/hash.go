package core

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// ComputeFingerprint hashes the ordered parts with a separator that cannot
// appear in column names read from CSV headers.
func ComputeFingerprint(parts ...string) Hash {
	return NewHash([]byte(strings.Join(parts, "\x1f")))
}

// DeriveSeed maps a base seed and an operation name onto a stable int64 seed.
func DeriveSeed(base int64, name string) int64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(base))
	sum := sha256.Sum256(append(buf[:], name...))
	return int64(binary.BigEndian.Uint64(sum[:8]) & 0x7fffffffffffffff)
}
