package granular

import "github.com/cwbudde/algo-granular/dsp/core"

// TriggerState is the local-mode capture state.
type TriggerState uint8

const (
	// TriggerIdle waits for the envelope to reach the trigger level.
	TriggerIdle TriggerState = iota
	// TriggerCapturing feeds input blocks into the current slot.
	TriggerCapturing
	// TriggerSettling waits for the envelope to drop below 90% of the
	// trigger level so one loud event captures once.
	TriggerSettling
)

const settleRatio = 0.9

func (s TriggerState) String() string {
	switch s {
	case TriggerIdle:
		return "idle"
	case TriggerCapturing:
		return "capturing"
	case TriggerSettling:
		return "settling"
	default:
		return "unknown"
	}
}

// TriggerState returns the local trigger state.
func (e *Engine) TriggerState() TriggerState { return e.trigger }

// CaptureCursor returns the slot most recently chosen by the local trigger.
func (e *Engine) CaptureCursor() int { return e.nextSlot }

func (e *Engine) setTrigger(s TriggerState) {
	e.trigger = s
	e.emit(EventTrigger, e.captureSlot, -1, e.env.level)
}

func (e *Engine) localMode(inL, inR []float64) {
	n := core.AbsMean2(e.scratch, inL, inR)
	level := e.env.update(e.scratch[:n])

	switch e.trigger {
	case TriggerIdle:
		if level < e.trigLevel {
			return
		}

		e.nextSlot = (e.nextSlot + 1) % NumSlots
		e.captureSlot = e.nextSlot

		s := e.startCapture(e.captureSlot)
		s.repeats = e.repeatCount
		s.cadence = e.repeatTime
		// the first repeat waits one cadence after the capture starts
		s.timer = e.repeatTime
		e.setRepeatStatus(e.captureSlot, s.repeats > 0)

		e.setTrigger(TriggerCapturing)

		fallthrough
	case TriggerCapturing:
		if !e.continueCapture(e.captureSlot, inL, inR) {
			return
		}
		e.setTrigger(TriggerSettling)

		fallthrough
	case TriggerSettling:
		if level > e.trigLevel*settleRatio {
			return
		}
		e.setTrigger(TriggerIdle)
	}
}
