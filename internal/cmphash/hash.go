// Package cmphash implements the incremental hash primitive the comparison
// engine builds every full/partial hash from: a cryptographic digest with
// copy/finish semantics, plus a lexicographic comparator used everywhere
// the engine needs deterministic ordering.
package cmphash

import (
	"bytes"
	"crypto/sha256"
	"sort"
)

// Size is the fixed width of every hash this package produces.
const Size = sha256.Size

// Hash is a 32-byte digest. The zero value is the "null hash", which
// Compare treats as sorting before any non-null hash.
type Hash [Size]byte

// IsNull reports whether h is the zero value.
func (h Hash) IsNull() bool {
	return h == Hash{}
}

// Bytes returns h's bytes as a slice.
func (h Hash) Bytes() []byte {
	return h[:]
}

// Compare returns -1, 0, or 1 as a orders before, equal to, or after b,
// lexicographically by byte. A null hash always sorts before a non-null
// one.
func Compare(a, b Hash) int {
	aNull, bNull := a.IsNull(), b.IsNull()
	if aNull && bNull {
		return 0
	}
	if aNull {
		return -1
	}
	if bNull {
		return 1
	}
	return bytes.Compare(a[:], b[:])
}

// Less reports whether a sorts strictly before b under Compare.
func Less(a, b Hash) bool {
	return Compare(a, b) < 0
}

// SortHashes sorts hs in place in ascending Compare order.
func SortHashes(hs []Hash) {
	sort.Slice(hs, func(i, j int) bool { return Less(hs[i], hs[j]) })
}

// State is an in-progress hash absorption. The zero value is not usable;
// obtain one from Begin.
type State struct {
	absorbed []byte // bytes absorbed so far, duplicated by Copy, digested by Finish
}

// Begin opens a new hash state. When flavor is non-empty it is absorbed
// first (including its terminating NUL), so that two constructs whose
// payloads would otherwise collide are kept distinct by their flavor tag.
func Begin(flavor string) *State {
	s := &State{}
	if flavor != "" {
		s.UpdateString(flavor)
	}
	return s
}

// Update absorbs the raw bytes of data into the state.
func (s *State) Update(data []byte) {
	// The standard library's sha256 digest type is unexported, so there
	// is no in-place context clone to call. Buffering the absorbed bytes
	// and digesting once in Finish keeps Copy a plain slice copy.
	s.absorbed = append(s.absorbed, data...)
}

// UpdateString absorbs s including its terminating NUL byte, so that
// "ab" and "a\x00b" cannot collide.
func (s *State) UpdateString(str string) {
	s.Update([]byte(str))
	s.Update([]byte{0})
}

// Copy returns an independent snapshot of s's current state. Further
// updates to either s or the copy do not affect the other.
func (s *State) Copy() *State {
	cp := make([]byte, len(s.absorbed))
	copy(cp, s.absorbed)
	return &State{absorbed: cp}
}

// Finish finalizes the digest and returns it. The state must not be used
// again afterward.
func (s *State) Finish() Hash {
	return sha256.Sum256(s.absorbed)
}

// One is a convenience for hashing a single byte slice with no flavor tag:
// equivalent to Begin("") followed by Update(data) and Finish().
func One(data []byte) Hash {
	return sha256.Sum256(data)
}

// HashAll digests the concatenation of hs, in the order given. Callers that
// need the multiset-canonical combination of a set of hashes should sort hs
// with SortHashes first.
func HashAll(hs []Hash) Hash {
	buf := make([]byte, 0, len(hs)*Size)
	for _, h := range hs {
		buf = append(buf, h[:]...)
	}
	return sha256.Sum256(buf)
}
