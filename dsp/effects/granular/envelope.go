package granular

import (
	"math"

	"github.com/cwbudde/algo-granular/dsp/core"
)

const (
	ampSmooth      = 0.95
	ampSensitivity = 0.6
	// trackRate is how quickly the min/max trackers chase a new extreme.
	trackRate = 0.8
	// relaxRate pulls min and max toward their midpoint every block.
	relaxRate = 0.01
	// msFloor keeps the first stage off exact zero in silence.
	msFloor = 1e-10
)

var envCoeff = math.Pow(ampSmooth, 0.2) * 0.3

// envelope is four cascaded one-pole smoothers over the mean absolute input.
// The first stage runs per frame, the rest once per block.
type envelope struct {
	ms1, ms2, ms3, ms4 float64

	level         float64
	min, max, mid float64
}

// EnvelopeInfo is a snapshot of the trigger envelope.
type EnvelopeInfo struct {
	Level float64
	Min   float64
	Mid   float64
	Max   float64
}

func (v *envelope) reset() {
	*v = envelope{}
}

// update consumes one block of per-frame mean absolute values and returns
// the smoothed level.
func (v *envelope) update(x []float64) float64 {
	a := envCoeff
	for _, s := range x {
		v.ms1 = v.ms1*(1-a) + s*a + msFloor
	}

	v.ms2 = core.FlushDenormals(v.ms2*(1-a) + v.ms1*a)
	v.ms3 = core.FlushDenormals(v.ms3*(1-a) + v.ms2*a)
	v.ms4 = core.FlushDenormals(v.ms4*(1-a) + v.ms3*a)
	v.level = mathSqrt(v.ms4) * ampSensitivity

	if v.level > v.max {
		v.max += (v.level - v.max) * trackRate
	}
	if v.level < v.min {
		v.min += (v.level - v.min) * trackRate
	}
	v.mid = (v.max - v.min) / 2
	v.min += (v.mid - v.min) * relaxRate
	v.max -= (v.max - v.mid) * relaxRate

	return v.level
}

// Envelope returns the current trigger envelope state.
func (e *Engine) Envelope() EnvelopeInfo {
	return EnvelopeInfo{
		Level: e.env.level,
		Min:   e.env.min,
		Mid:   e.env.mid,
		Max:   e.env.max,
	}
}
