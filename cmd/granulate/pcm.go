package main

import (
	"encoding/binary"
	"io"
	"math"
)

// pcmReader streams a stereo pair as interleaved float32 little-endian
// frames.
type pcmReader struct {
	left, right []float64
	pos         int
}

func newPCMReader(left, right []float64) *pcmReader {
	n := min(len(left), len(right))
	return &pcmReader{left: left[:n], right: right[:n]}
}

func (r *pcmReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.left) {
		return 0, io.EOF
	}
	n := 0
	for n+8 <= len(p) && r.pos < len(r.left) {
		binary.LittleEndian.PutUint32(p[n:], math.Float32bits(float32(r.left[r.pos])))
		binary.LittleEndian.PutUint32(p[n+4:], math.Float32bits(float32(r.right[r.pos])))
		n += 8
		r.pos++
	}
	return n, nil
}
