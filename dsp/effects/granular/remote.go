package granular

import (
	"fmt"
	"strings"
)

// Request bitfield layout. The low three bits select the target slot; the
// first command bit set, in ascending order, wins.
const (
	RequestSlotMask uint32 = 0x07
	RequestCapture  uint32 = 0x08
	RequestRepeat   uint32 = 0x10
	RequestErase    uint32 = 0x20
	RequestNext     uint32 = 0x40
	RequestSequence uint32 = 0x80
)

// Command is a decoded remote request.
type Command uint8

const (
	// CommandNone carries no action.
	CommandNone Command = iota
	// CommandCapture restarts capture on the slot with repeats disarmed.
	CommandCapture
	// CommandRepeat (re)arms repeats on a slot holding content.
	CommandRepeat
	// CommandErase ends the slot's grains and frees it.
	CommandErase
	// CommandNext captures into the next free slot after the last capture,
	// evicting round robin when all are busy. The slot field is ignored.
	CommandNext
	// CommandSequence is reserved and has no effect.
	CommandSequence
)

func (c Command) String() string {
	switch c {
	case CommandNone:
		return "none"
	case CommandCapture:
		return "capture"
	case CommandRepeat:
		return "repeat"
	case CommandErase:
		return "erase"
	case CommandNext:
		return "next"
	case CommandSequence:
		return "sequence"
	default:
		return "unknown"
	}
}

// ParseCommand parses a command name as printed by Command.String.
func ParseCommand(name string) (Command, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for c := CommandNone; c <= CommandSequence; c++ {
		if c.String() == name {
			return c, nil
		}
	}
	return CommandNone, fmt.Errorf("granular: unknown command %q", name)
}

// Request is the decoded form of the request bitfield.
type Request struct {
	Command Command
	Slot    int
}

func (r Request) String() string {
	return fmt.Sprintf("%s(%d)", r.Command, r.Slot)
}

// DecodeRequest decodes a request bitfield. Bits above 0x80 are ignored.
func DecodeRequest(bits uint32) Request {
	r := Request{Slot: int(bits & RequestSlotMask)}
	switch {
	case bits&RequestCapture != 0:
		r.Command = CommandCapture
	case bits&RequestRepeat != 0:
		r.Command = CommandRepeat
	case bits&RequestErase != 0:
		r.Command = CommandErase
	case bits&RequestNext != 0:
		r.Command = CommandNext
	case bits&RequestSequence != 0:
		r.Command = CommandSequence
	}
	return r
}

// Bits encodes r as a request bitfield.
func (r Request) Bits() uint32 {
	bits := uint32(r.Slot) & RequestSlotMask
	switch r.Command {
	case CommandCapture:
		bits |= RequestCapture
	case CommandRepeat:
		bits |= RequestRepeat
	case CommandErase:
		bits |= RequestErase
	case CommandNext:
		bits |= RequestNext
	case CommandSequence:
		bits |= RequestSequence
	default:
		return 0
	}
	return bits
}

// RepeatState is the 2-bit per-slot repeat status.
type RepeatState uint8

const (
	RepeatIdle RepeatState = iota
	RepeatActive
)

// SlotStatus extracts slot i from a status word.
func SlotStatus(word uint32, i int) SlotState {
	return SlotState((word >> (2 * uint(i))) & 3)
}

// SlotRepeatStatus extracts slot i from a repeat-status word.
func SlotRepeatStatus(word uint32, i int) RepeatState {
	return RepeatState((word >> (2 * uint(i))) & 3)
}

// SubmitRequest stores a request bitfield for the next remote-mode block.
// A later submission before then replaces it. Safe for concurrent use.
func (e *Engine) SubmitRequest(bits uint32) {
	e.request.Store(bits)
}

// PendingRequest returns the request not yet actioned, or 0.
// Safe for concurrent use.
func (e *Engine) PendingRequest() uint32 {
	return e.request.Load()
}

// Status returns the 2-bit-per-slot status word published by the last block.
// Safe for concurrent use.
func (e *Engine) Status() uint32 {
	return e.status.Load()
}

// RepeatStatus returns the 2-bit-per-slot repeat-status word published by
// the last block. Safe for concurrent use.
func (e *Engine) RepeatStatus() uint32 {
	return e.repeatStatus.Load()
}

func (e *Engine) setRepeatStatus(idx int, active bool) {
	shift := 2 * uint(idx)
	e.repeatBits &^= 3 << shift
	if active {
		e.repeatBits |= uint32(RepeatActive) << shift
	}
}

func (e *Engine) publishStatus() {
	var word uint32
	for i := range e.slots {
		word |= uint32(e.slots[i].state()) << (2 * uint(i))
	}
	e.status.Store(word)
	e.repeatStatus.Store(e.repeatBits)
}

func (e *Engine) remoteMode(inL, inR []float64) {
	// clearing the word acknowledges the request
	if bits := e.request.Swap(0); bits != 0 {
		e.execute(DecodeRequest(bits))
	}

	for i := range e.slots {
		s := &e.slots[i]
		if s.inUse && !s.complete() {
			e.continueCapture(i, inL, inR)
		}
	}
}

func (e *Engine) execute(r Request) {
	switch r.Command {
	case CommandCapture:
		e.remoteCapture(r.Slot)
	case CommandRepeat:
		e.armRepeats(r.Slot)
	case CommandErase:
		e.erase(r.Slot)
	case CommandNext:
		e.remoteCapture(e.nextFreeSlot())
	case CommandSequence, CommandNone:
	}
}

// remoteCapture starts a capture with the repeat cadence zeroed; repeats
// must be armed by a separate request.
func (e *Engine) remoteCapture(idx int) {
	e.lastCapture = idx
	s := e.startCapture(idx)
	s.repeats = 0
	s.cadence = 0
	s.timer = 0
	e.setRepeatStatus(idx, false)
}

func (e *Engine) armRepeats(idx int) {
	s := &e.slots[idx]
	if !s.inUse {
		return
	}

	s.timer = 0
	s.launched = 0
	s.repeats = e.repeatCount
	if s.repeats == 0 {
		s.repeats = unlimitedRepeats
	}
	s.cadence = e.repeatTime
	e.setRepeatStatus(idx, true)

	e.emit(EventRepeatArm, idx, -1, float64(s.repeats))
}

func (e *Engine) erase(idx int) {
	e.terminateGrains(idx)
	s := &e.slots[idx]
	s.repeats = 0
	s.inUse = false
	e.setRepeatStatus(idx, false)

	e.emit(EventErase, idx, -1, 0)
}

// nextFreeSlot returns the first unused slot after the last capture, or the
// slot right after it when every slot is in use.
func (e *Engine) nextFreeSlot() int {
	for k := 1; k <= NumSlots; k++ {
		i := (e.lastCapture + k) % NumSlots
		if !e.slots[i].inUse {
			return i
		}
	}
	return (e.lastCapture + 1) % NumSlots
}
