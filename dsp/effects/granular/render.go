package granular

import (
	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-granular/dsp/core"
)

// renderGrains clears the wet accumulators, then advances, mixes and retires
// every active grain.
func (e *Engine) renderGrains() {
	core.Zero(e.wetL)
	core.Zero(e.wetR)

	for n := range e.grains {
		g := &e.grains[n]
		if !g.inUse {
			continue
		}

		g.timer++
		if g.timer >= g.length {
			e.retireGrain(n)
			continue
		}

		e.renderGrain(g)
	}
}

func (e *Engine) retireGrain(n int) {
	g := &e.grains[n]
	s := g.src
	// the last live grain of a finished sequence ends it even when the
	// final repeat itself was dropped
	if g.repeat >= s.repeats || (s.launched >= s.repeats && s.active == 1) {
		e.setRepeatStatus(g.slot, false)
	}
	e.emit(EventGrainRetire, g.slot, n, float64(g.repeat))
	e.terminateGrain(n)
}

// renderGrain adds one block of g into the wet accumulators. Forward grains
// read block timer; reverse grains read block length-timer-1 backwards and
// only once the slot is fully captured. Blocks not yet captured are silent,
// but the click ramp still runs over them.
func (e *Engine) renderGrain(g *grain) {
	block, ok := e.grainBlock(g)
	var srcL, srcR []float64
	if ok {
		srcL, srcR, ok = g.src.data.Block(block)
	}
	if !ok {
		if g.timer == 1 {
			g.ramp = min(e.fadeLimit, g.ramp+e.blockSize)
		}
		return
	}

	gainL := e.panL * g.cross * 2
	gainR := e.panR * (1 - g.cross) * 2

	first := g.timer == 1 && g.ramp < e.fadeLimit
	last := g.timer == g.length-1
	if first || last {
		e.renderRamp(g, srcL, srcR, gainL, gainR, first, last)
		return
	}

	amp := g.fade * float64(g.ramp) / float64(e.fadeLimit)
	if g.reverse {
		reverseInto(e.revL, srcL)
		reverseInto(e.revR, srcR)
		srcL, srcR = e.revL, e.revR
	}
	vecmath.ScaleBlock(e.scratch, srcL, amp*gainL)
	vecmath.AddBlockInPlace(e.wetL, e.scratch)
	vecmath.ScaleBlock(e.scratch, srcR, amp*gainR)
	vecmath.AddBlockInPlace(e.wetR, e.scratch)
}

// grainBlock returns the slot block g reads at its current timer, or false
// when that block has not been captured yet.
func (e *Engine) grainBlock(g *grain) (int, bool) {
	s := g.src
	if g.reverse {
		frame := g.length - g.timer
		if frame <= 0 || frame > s.blocks || !s.complete() {
			return 0, false
		}
		return frame - 1, true
	}
	if g.timer >= s.loaded {
		return 0, false
	}
	return g.timer, true
}

// renderRamp mixes a block frame by frame while the click ramp moves: up by
// one per frame on the first block, down by one per frame over the final
// fadeLimit frames of the last block.
func (e *Engine) renderRamp(g *grain, srcL, srcR []float64, gainL, gainR float64, first, last bool) {
	bs := e.blockSize
	limit := e.fadeLimit
	scale := g.fade / float64(limit)

	for i := 0; i < bs; i++ {
		if first && g.ramp < limit {
			g.ramp++
		}
		if last && i > bs-limit && g.ramp > 1 {
			g.ramp--
		}

		j := i
		if g.reverse {
			j = bs - i - 1
		}

		amp := scale * float64(g.ramp)
		e.wetL[i] += srcL[j] * amp * gainL
		e.wetR[i] += srcR[j] * amp * gainR
	}
}

func reverseInto(dst, src []float64) {
	n := len(src)
	for i := range src {
		dst[i] = src[n-1-i]
	}
}
