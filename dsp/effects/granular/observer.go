package granular

// EventKind identifies an engine diagnostic event.
type EventKind uint8

const (
	// EventCaptureStart is emitted when a slot starts capturing. Value holds
	// the target length in blocks.
	EventCaptureStart EventKind = iota
	// EventCaptureComplete is emitted when a slot buffer is full. Value holds
	// the captured peak amplitude.
	EventCaptureComplete
	// EventRepeatArm is emitted when a remote request (re)arms a slot's
	// repeats. Value holds the repeat count.
	EventRepeatArm
	// EventGrainLaunch is emitted when a grain is allocated. Value holds its
	// fade factor.
	EventGrainLaunch
	// EventGrainRetire is emitted when a grain reaches its length.
	EventGrainRetire
	// EventPoolExhausted is emitted when a due repeat finds no free grain.
	EventPoolExhausted
	// EventErase is emitted when a slot is erased.
	EventErase
	// EventTrigger is emitted on every local trigger state change. Value holds
	// the envelope level.
	EventTrigger
	// EventClip is emitted for a block whose output peak exceeds 1. Value
	// holds the peak before the clip policy is applied.
	EventClip
)

func (k EventKind) String() string {
	switch k {
	case EventCaptureStart:
		return "capture_start"
	case EventCaptureComplete:
		return "capture_complete"
	case EventRepeatArm:
		return "repeat_arm"
	case EventGrainLaunch:
		return "grain_launch"
	case EventGrainRetire:
		return "grain_retire"
	case EventPoolExhausted:
		return "pool_exhausted"
	case EventErase:
		return "erase"
	case EventTrigger:
		return "trigger"
	case EventClip:
		return "clip"
	default:
		return "unknown"
	}
}

// Event is a diagnostic record produced on the audio path.
// Slot and Grain are -1 when not applicable.
type Event struct {
	Kind  EventKind
	Block uint64
	Slot  int
	Grain int
	Value float64
}

// Observer receives engine events synchronously from Process. Implementations
// must return quickly and must not block; hand events to another goroutine
// for logging or I/O.
type Observer interface {
	Observe(ev Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ev Event)

// Observe calls f(ev).
func (f ObserverFunc) Observe(ev Event) { f(ev) }

func (e *Engine) emit(kind EventKind, slot, grain int, value float64) {
	if e.observer == nil {
		return
	}
	e.observer.Observe(Event{
		Kind:  kind,
		Block: e.blocks,
		Slot:  slot,
		Grain: grain,
		Value: value,
	})
}
