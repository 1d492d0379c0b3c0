package kernel

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// hasher accumulates a value's constituent fields into the single cached
// 64-bit hash required ("constructor tag, child handles, scalar
// payloads") using xxhash, a fast non-cryptographic hash — the Go-ecosystem
// stand-in for the original kernel's rustc_hash::FxHasher.
type hasher struct {
	d *xxhash.Digest
}

func newHasher(tag uint64) hasher {
	h := hasher{d: xxhash.New()}
	h.writeUint(tag)
	return h
}

func (h hasher) writeUint(v uint64) hasher {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	_, _ = h.d.Write(buf[:])
	return h
}

func (h hasher) writeString(s string) hasher {
	_, _ = h.d.Write([]byte(s))
	return h
}

func (h hasher) sum() uint64 {
	return h.d.Sum64()
}

// hash64 combines a constructor tag with a fixed set of uint64 fields, the
// Go equivalent of original_source's hash64! macro.
func hash64(tag uint64, parts ...uint64) uint64 {
	h := newHasher(tag)
	for _, p := range parts {
		h.writeUint(p)
	}
	return h.sum()
}
