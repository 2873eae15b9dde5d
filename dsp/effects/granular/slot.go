package granular

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-granular/dsp/buffer"
)

// NumSlots is the number of capture slots.
const NumSlots = 8

// SlotState is the 2-bit per-slot status published in the status word.
type SlotState uint8

const (
	SlotIdle SlotState = iota
	SlotCapturing
	SlotReady
)

func (s SlotState) String() string {
	switch s {
	case SlotIdle:
		return "idle"
	case SlotCapturing:
		return "capturing"
	case SlotReady:
		return "ready"
	default:
		return "unknown"
	}
}

type slot struct {
	data *buffer.Stereo

	inUse  bool
	blocks int // target length
	loaded int // blocks captured so far
	peak   float64

	repeats  int // total repeats requested
	launched int // repeats launched so far
	active   int // grains currently reading this slot

	timer   int // blocks until the next repeat may launch
	cadence int // base gap between repeats
}

func (s *slot) complete() bool { return s.loaded >= s.blocks }

func (s *slot) state() SlotState {
	switch {
	case !s.inUse:
		return SlotIdle
	case s.loaded < s.blocks:
		return SlotCapturing
	default:
		return SlotReady
	}
}

// SlotInfo is a read-only snapshot of one capture slot.
type SlotInfo struct {
	State         SlotState
	InUse         bool
	Blocks        int
	Loaded        int
	Peak          float64
	Repeats       int
	Launched      int
	ActiveRepeats int
	TriggerTimer  int
	Cadence       int
}

// Slot returns a snapshot of slot i.
func (e *Engine) Slot(i int) (SlotInfo, bool) {
	if i < 0 || i >= NumSlots {
		return SlotInfo{}, false
	}
	s := &e.slots[i]
	return SlotInfo{
		State:         s.state(),
		InUse:         s.inUse,
		Blocks:        s.blocks,
		Loaded:        s.loaded,
		Peak:          s.peak,
		Repeats:       s.repeats,
		Launched:      s.launched,
		ActiveRepeats: s.active,
		TriggerTimer:  s.timer,
		Cadence:       s.cadence,
	}, true
}

// SlotData returns views of the captured frames of slot i. The slices alias
// engine storage and are only valid until the next Process call.
func (e *Engine) SlotData(i int) (left, right []float64, ok bool) {
	if i < 0 || i >= NumSlots || !e.slots[i].inUse {
		return nil, nil, false
	}
	s := &e.slots[i]
	n := s.loaded * e.blockSize
	return s.data.Left.Samples()[:n], s.data.Right.Samples()[:n], true
}

// startCapture ends every grain reading slot idx, then rewinds the slot for
// a fresh capture at the current length setting. Repeat bookkeeping is left
// to the caller.
func (e *Engine) startCapture(idx int) *slot {
	e.terminateGrains(idx)

	s := &e.slots[idx]
	s.inUse = true
	s.blocks = s.data.SetBlocks(e.captureBlocks)
	s.loaded = 0
	s.timer = 0
	s.launched = 0
	s.peak = 0

	e.emit(EventCaptureStart, idx, -1, float64(s.blocks))

	return s
}

// continueCapture appends one input block to slot idx and reports whether
// the slot is full.
func (e *Engine) continueCapture(idx int, inL, inR []float64) bool {
	s := &e.slots[idx]
	if !s.inUse || s.complete() {
		return true
	}

	s.data.WriteBlock(s.loaded, inL, inR)

	if m := vecmath.MaxAbs(inL); m > s.peak {
		s.peak = m
	}
	if m := vecmath.MaxAbs(inR); m > s.peak {
		s.peak = m
	}

	s.loaded++
	if s.complete() {
		e.emit(EventCaptureComplete, idx, -1, s.peak)
		return true
	}
	return false
}
