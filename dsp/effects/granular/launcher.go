package granular

func (e *Engine) launchRepeats() {
	for i := range e.slots {
		e.launchSlotRepeats(i)
	}
}

// launchSlotRepeats counts the slot's trigger timer down and, once it has
// elapsed, starts the next repeat if the overlay policy and the repeat
// budget allow. A dropped launch still consumes the repeat, and dropping
// the final one with nothing left playing ends the sequence.
func (e *Engine) launchSlotRepeats(idx int) {
	s := &e.slots[idx]
	if !s.inUse {
		return
	}

	if s.timer > 0 {
		s.timer--
		return
	}

	if !e.mode.OverlayRepeats && s.active > 0 {
		return
	}
	if s.launched >= s.repeats {
		return
	}

	s.launched++
	s.timer = e.cadence(s)
	if !e.launchGrain(idx) && s.launched >= s.repeats && s.active == 0 {
		e.setRepeatStatus(idx, false)
	}
}

func (e *Engine) cadence(s *slot) int {
	switch e.program {
	case ProgramIncreasing:
		return s.cadence + s.launched
	case ProgramDecreasing:
		return s.cadence - s.launched
	default:
		return s.cadence
	}
}
