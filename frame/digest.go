package frame

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/blake2b"
)

// DigestSize is the length in bytes of frame digests.
const DigestSize = blake2b.Size256

// Digest returns the BLAKE2b-256 hash of a single frame, covering its
// dimensions and pixel data.
func Digest(b *Buffer) [DigestSize]byte {
	d := NewDigestWriter()
	d.Add(b)
	var out [DigestSize]byte
	copy(out[:], d.Sum())
	return out
}

// DigestWriter accumulates a running hash over an ordered frame sequence.
// Two sequences produce the same sum only if they hold the same frames in
// the same order. It is not safe for concurrent use.
type DigestWriter struct {
	h      hash.Hash
	frames int
}

// NewDigestWriter creates an empty running digest.
func NewDigestWriter() *DigestWriter {
	// New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return &DigestWriter{h: h}
}

// Add appends a frame to the digest.
func (d *DigestWriter) Add(b *Buffer) {
	var hdr [8]byte
	binary.LittleEndian.PutUint32(hdr[0:4], uint32(b.Width))
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(b.Height))
	d.h.Write(hdr[:])
	d.h.Write(b.Data)
	d.frames++
}

// Frames returns the number of frames added so far.
func (d *DigestWriter) Frames() int {
	return d.frames
}

// Sum returns the digest of all frames added so far.
func (d *DigestWriter) Sum() []byte {
	return d.h.Sum(nil)
}
