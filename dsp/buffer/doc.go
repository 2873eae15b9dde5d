// Package buffer provides pre-sized float64 sample storage for real-time
// capture. A Buffer is allocated once at its maximum capacity; resizing
// within that capacity never allocates, which keeps capture restarts inside
// an audio callback allocation-free.
//
// Stereo pairs two Buffers and addresses them in fixed-size blocks, the unit
// the granular engine records and plays back. Pool hands out stereo scratch
// blocks to hosts that render outside the engine.
package buffer
