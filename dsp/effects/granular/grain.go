package granular

// MaxGrains is the size of the grain pool.
const MaxGrains = 16

type grain struct {
	inUse bool
	src   *slot
	slot  int // index of src, kept for retirement bookkeeping

	timer  int
	length int

	reverse bool
	repeat  int     // repeat ordinal within the slot's sequence
	cross   float64 // left weight; right gets 1-cross
	fade    float64 // fade-curve amplitude
	ramp    int     // click ramp counter in [1, fadeLimit]
}

// GrainInfo is a read-only snapshot of one grain pool entry.
type GrainInfo struct {
	InUse   bool
	Slot    int
	Timer   int
	Length  int
	Reverse bool
	Repeat  int
	Cross   float64
	Fade    float64
	Ramp    int
}

// Grain returns a snapshot of pool entry i.
func (e *Engine) Grain(i int) (GrainInfo, bool) {
	if i < 0 || i >= MaxGrains {
		return GrainInfo{}, false
	}
	g := &e.grains[i]
	return GrainInfo{
		InUse:   g.inUse,
		Slot:    g.slot,
		Timer:   g.timer,
		Length:  g.length,
		Reverse: g.reverse,
		Repeat:  g.repeat,
		Cross:   g.cross,
		Fade:    g.fade,
		Ramp:    g.ramp,
	}, true
}

// ActiveGrains returns the number of grains in use.
func (e *Engine) ActiveGrains() int { return e.activeGrains }

// launchGrain allocates a grain for slot idx, scanning round robin from the
// entry after the last one used. A full pool drops the repeat.
func (e *Engine) launchGrain(idx int) bool {
	n := -1
	for range MaxGrains {
		e.nextGrain = (e.nextGrain + 1) % MaxGrains
		if !e.grains[e.nextGrain].inUse {
			n = e.nextGrain
			break
		}
	}
	if n < 0 {
		e.emit(EventPoolExhausted, idx, -1, float64(e.slots[idx].launched))
		return false
	}

	s := &e.slots[idx]

	e.crossToggle = !e.crossToggle
	cross := e.crossover
	if !e.crossToggle {
		cross = 1 - e.crossover
	}

	// grains never read past captured content
	length := e.repeatBlocks
	if length > s.blocks {
		length = s.blocks
	}

	e.grains[n] = grain{
		inUse:   true,
		src:     s,
		slot:    idx,
		length:  length,
		reverse: e.nextDirection(),
		repeat:  s.launched,
		cross:   cross,
		fade:    FadeFactor(e.params[ParamFade], s.launched, s.repeats),
		ramp:    1,
	}
	s.active++
	e.activeGrains++

	e.emit(EventGrainLaunch, idx, n, e.grains[n].fade)

	return true
}

func (e *Engine) terminateGrain(n int) {
	g := &e.grains[n]
	if !g.inUse {
		return
	}
	g.inUse = false
	g.src.active--
	g.src = nil
	e.activeGrains--
}

// terminateGrains force-ends every grain reading slot idx.
func (e *Engine) terminateGrains(idx int) {
	for n := range e.grains {
		if e.grains[n].inUse && e.grains[n].slot == idx {
			e.terminateGrain(n)
		}
	}
}
