// Package frame provides the pixel buffer type and per-frame effects used by
// the benchmark pipeline.
//
// # Pixel Buffers
//
// A Buffer is a row-major grid of 3-channel pixels stored in B, G, R order,
// which is the layout ffmpeg produces for the bgr24 pixel format:
//
//	buf, err := frame.NewBuffer(640, 480)
//	if err != nil {
//	    return err
//	}
//	buf.Set(10, 20, 0, 0, 255) // pure red at x=10, y=20
//
// len(buf.Data) is always Width*Height*Channels. Buffers are treated as
// immutable once captured: effects read from their input and write to a
// freshly allocated output.
//
// # Effects
//
// An Effect transforms one Buffer into a new Buffer. The EdgeHighlightEffect
// marks the 8-connected neighbourhood of every dark pixel in red:
//
//	effect := frame.NewEdgeHighlightEffect()
//	out, err := effect.Apply(buf)
//
// Effects hold no mutable state, so a single Effect value can be shared by
// any number of goroutines.
//
// # Digests
//
// Digest and DigestWriter compute BLAKE2b-256 hashes over frame contents so
// that runs with different worker counts can be checked for identical output.
package frame
