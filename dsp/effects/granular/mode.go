package granular

// Direction selects the playback direction policy for new grains.
type Direction uint8

const (
	// DirectionForward plays every grain forward.
	DirectionForward Direction = iota
	// DirectionAlternate flips direction on every launch, across all slots.
	DirectionAlternate
	// DirectionReverse plays every grain reversed.
	DirectionReverse
	// DirectionRandom picks a direction with equal probability per launch.
	DirectionRandom
)

func (d Direction) String() string {
	switch d {
	case DirectionForward:
		return "forward"
	case DirectionAlternate:
		return "alternate"
	case DirectionReverse:
		return "reverse"
	case DirectionRandom:
		return "random"
	default:
		return "unknown"
	}
}

const (
	modeDirectionMask = 0x03
	modeRemoteBit     = 0x04
	modeOverlayBit    = 0x08
)

// Mode is the decoded form of the mode control byte.
type Mode struct {
	Direction Direction
	// RemoteOnly disables envelope triggering; captures and repeats are
	// driven by the request bitfield.
	RemoteOnly bool
	// OverlayRepeats lets a slot launch a new repeat while earlier ones are
	// still sounding.
	OverlayRepeats bool
}

// DecodeMode decodes the mode byte: bits 0-1 direction, bit 2 remote-only,
// bit 3 overlay repeats. Higher bits are ignored.
func DecodeMode(b uint8) Mode {
	return Mode{
		Direction:      Direction(b & modeDirectionMask),
		RemoteOnly:     b&modeRemoteBit != 0,
		OverlayRepeats: b&modeOverlayBit != 0,
	}
}

// Encode returns the wire byte for m.
func (m Mode) Encode() uint8 {
	b := uint8(m.Direction) & modeDirectionMask
	if m.RemoteOnly {
		b |= modeRemoteBit
	}
	if m.OverlayRepeats {
		b |= modeOverlayBit
	}
	return b
}

// Program selects how the repeat cadence evolves over a repeat sequence.
type Program uint8

const (
	// ProgramStandard keeps the cadence constant.
	ProgramStandard Program = iota
	// ProgramIncreasing lengthens the gap by one block per repeat.
	ProgramIncreasing
	// ProgramDecreasing shortens the gap by one block per repeat.
	ProgramDecreasing
)

func (p Program) String() string {
	switch p {
	case ProgramStandard:
		return "standard"
	case ProgramIncreasing:
		return "increasing"
	case ProgramDecreasing:
		return "decreasing"
	default:
		return "standard"
	}
}

func (e *Engine) nextDirection() bool {
	e.reverseToggle = !e.reverseToggle
	switch e.mode.Direction {
	case DirectionReverse:
		return true
	case DirectionAlternate:
		return e.reverseToggle
	case DirectionRandom:
		return e.rng.Intn(2) == 1
	default:
		return false
	}
}
