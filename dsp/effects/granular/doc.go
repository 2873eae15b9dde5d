// Package granular implements a real-time stereo granular repeat engine.
//
// The engine listens to an incoming block stream and captures short snippets
// of it into a fixed set of slots, either autonomously when a smoothed input
// envelope crosses a threshold (local mode) or on command through a request
// bitfield (remote mode). Each captured slot then launches a configurable
// number of repeats: short grains drawn from the slot, played forward or
// reversed, faded across the repeat sequence and alternated across the
// stereo field.
//
// Every block runs three stages in a fixed order:
//
//  1. trigger: local envelope state machine or remote command decode
//  2. launcher: per-slot repeat cadence, grain allocation from the pool
//  3. renderer: advance, mix and retire every active grain
//
// Slots and grains live in fixed arrays and slot storage is pre-sized to the
// maximum capture length, so Process never allocates.
//
// Engine is not safe for concurrent use, with the exception of
// SubmitRequest, PendingRequest, Status and RepeatStatus, which may be called
// from any goroutine.
package granular
