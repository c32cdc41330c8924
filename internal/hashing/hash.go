// Package hashing provides the content-addressing primitive used by the
// deliberation node store. Digests are SHA-256 hex strings computed over a
// length-prefixed concatenation of the input parts, so composite digests
// cannot collide by boundary shifting ("ab"+"c" vs "a"+"bc").
package hashing

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// DigestSize is the length of a hex digest produced by this package.
const DigestSize = sha256.Size * 2

// Digest computes a deterministic SHA-256 hex digest over the given parts.
// Each part is framed with its big-endian length before hashing, so the
// digest is sensitive to both part contents and part boundaries.
func Digest(parts ...[]byte) string {
	h := sha256.New()
	var frame [8]byte
	for _, p := range parts {
		binary.BigEndian.PutUint64(frame[:], uint64(len(p)))
		h.Write(frame[:])
		h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// DigestStrings is a convenience wrapper over Digest for string inputs.
func DigestStrings(parts ...string) string {
	raw := make([][]byte, len(parts))
	for i, p := range parts {
		raw[i] = []byte(p)
	}
	return Digest(raw...)
}
