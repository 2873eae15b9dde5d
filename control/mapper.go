package control

import (
	midi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-granular/dsp/effects/granular"
)

// MIDI layout of the control surface.
const (
	CCVolume = 7
	CCPan    = 10
	// CCParamBase maps CC 20..30 to parameters program..fade-limit.
	CCParamBase = 20

	// PadBase is the note of the capture pad for slot 0. Each row of
	// granular.NumSlots pads maps to one command: capture, repeat, erase,
	// next, sequence.
	PadBase = 36

	// OmniChannel accepts messages on every channel.
	OmniChannel = 0xFF
)

// Pad LED velocities, using the common Launchpad palette.
const (
	LEDOff       = 0
	LEDRepeating = 5
	LEDCapturing = 9
	LEDReady     = 21
)

var padRows = [...]granular.Command{
	granular.CommandCapture,
	granular.CommandRepeat,
	granular.CommandErase,
	granular.CommandNext,
	granular.CommandSequence,
}

// PadNote returns the note of the pad sending cmd for slot, or false when cmd
// has no pad row or slot is out of range.
func PadNote(cmd granular.Command, slot int) (uint8, bool) {
	if slot < 0 || slot >= granular.NumSlots {
		return 0, false
	}
	for row, c := range padRows {
		if c == cmd {
			return uint8(PadBase + row*granular.NumSlots + slot), true
		}
	}
	return 0, false
}

func padRequest(note uint8) (granular.Request, bool) {
	idx := int(note) - PadBase
	if idx < 0 || idx >= len(padRows)*granular.NumSlots {
		return granular.Request{}, false
	}
	return granular.Request{
		Command: padRows[idx/granular.NumSlots],
		Slot:    idx % granular.NumSlots,
	}, true
}

func ccParam(cc uint8) (granular.Param, bool) {
	switch {
	case cc == CCVolume:
		return granular.ParamVolume, true
	case cc == CCPan:
		return granular.ParamPan, true
	case cc >= CCParamBase && int(cc) < CCParamBase+int(granular.NumParams)-2:
		return granular.ParamProgram + granular.Param(cc-CCParamBase), true
	default:
		return 0, false
	}
}

// Mapper translates MIDI messages into control changes.
type Mapper struct {
	channel uint8
	queue   *Queue
}

// NewMapper creates a mapper listening on channel (0-15, or OmniChannel)
// that pushes its changes to q.
func NewMapper(channel uint8, q *Queue) *Mapper {
	return &Mapper{channel: channel, queue: q}
}

// Translate converts msg into a Change. Messages on other channels and
// messages without a mapping report false.
func (m *Mapper) Translate(msg midi.Message) (Change, bool) {
	var ch, a, b uint8

	switch {
	case msg.GetControlChange(&ch, &a, &b):
		if !m.accepts(ch) {
			return Change{}, false
		}
		p, ok := ccParam(a)
		if !ok {
			return Change{}, false
		}
		return Change{Kind: ChangeParam, Param: p, Value: b}, true

	case msg.GetProgramChange(&ch, &a):
		if !m.accepts(ch) {
			return Change{}, false
		}
		return Change{Kind: ChangePreset, Value: a}, true

	case msg.GetNoteStart(&ch, &a, &b):
		if !m.accepts(ch) {
			return Change{}, false
		}
		r, ok := padRequest(a)
		if !ok {
			return Change{}, false
		}
		return Change{Kind: ChangeRequest, Request: r.Bits()}, true
	}

	return Change{}, false
}

// Handle translates msg and queues the result. It reports whether msg was
// mapped and accepted by the queue.
func (m *Mapper) Handle(msg midi.Message) bool {
	c, ok := m.Translate(msg)
	if !ok {
		return false
	}
	return m.queue.Push(c)
}

func (m *Mapper) accepts(ch uint8) bool {
	return m.channel == OmniChannel || ch == m.channel
}

func (m *Mapper) outChannel() uint8 {
	if m.channel == OmniChannel {
		return 0
	}
	return m.channel
}

// Feedback renders the status and repeat-status words as Note On messages
// for the capture and repeat pad rows.
func (m *Mapper) Feedback(status, repeat uint32) []midi.Message {
	ch := m.outChannel()
	out := make([]midi.Message, 0, 2*granular.NumSlots)

	for slot := range granular.NumSlots {
		note, _ := PadNote(granular.CommandCapture, slot)
		out = append(out, midi.NoteOn(ch, note, slotLED(granular.SlotStatus(status, slot))))
	}
	for slot := range granular.NumSlots {
		note, _ := PadNote(granular.CommandRepeat, slot)
		vel := uint8(LEDOff)
		if granular.SlotRepeatStatus(repeat, slot) == granular.RepeatActive {
			vel = LEDRepeating
		}
		out = append(out, midi.NoteOn(ch, note, vel))
	}

	return out
}

func slotLED(s granular.SlotState) uint8 {
	switch s {
	case granular.SlotCapturing:
		return LEDCapturing
	case granular.SlotReady:
		return LEDReady
	default:
		return LEDOff
	}
}
