// Package diag moves granular engine events off the audio path.
//
// The engine reports through a synchronous Observer hook that must never
// block. Ring buffers events in a bounded channel and drops on overflow;
// Drain runs on its own goroutine and writes them to a slog.Logger. Metrics
// keeps atomic per-kind counters that any goroutine may snapshot.
package diag
