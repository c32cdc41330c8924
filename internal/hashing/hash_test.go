package hashing

import (
	"strings"
	"testing"
)

func TestDigest_Deterministic(t *testing.T) {
	a := Digest([]byte("intelligence brief"))
	b := Digest([]byte("intelligence brief"))
	if a != b {
		t.Errorf("identical input produced different digests: %s vs %s", a, b)
	}
}

func TestDigest_Length(t *testing.T) {
	d := Digest([]byte("x"))
	if len(d) != DigestSize {
		t.Errorf("digest length = %d, want %d", len(d), DigestSize)
	}
	if strings.ToLower(d) != d {
		t.Errorf("digest is not lowercase hex: %s", d)
	}
}

func TestDigest_OrderSensitive(t *testing.T) {
	ab := Digest([]byte("a"), []byte("b"))
	ba := Digest([]byte("b"), []byte("a"))
	if ab == ba {
		t.Error("digest is not order-sensitive")
	}
}

func TestDigest_BoundarySensitive(t *testing.T) {
	// Length framing must distinguish ("ab","c") from ("a","bc").
	left := Digest([]byte("ab"), []byte("c"))
	right := Digest([]byte("a"), []byte("bc"))
	if left == right {
		t.Error("digest collides across part boundaries")
	}
}

func TestDigest_EmptyParts(t *testing.T) {
	if Digest() == Digest([]byte{}) {
		t.Error("zero parts and one empty part should differ")
	}
}

func TestDigestStrings_MatchesDigest(t *testing.T) {
	if DigestStrings("role", "model") != Digest([]byte("role"), []byte("model")) {
		t.Error("DigestStrings diverges from Digest")
	}
}
