package granular

import (
	"fmt"
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-granular/dsp/core"
)

// ClipPolicy decides what happens to output samples beyond ±1. Grains sum
// without limiting, so dense overlays can exceed full scale.
type ClipPolicy uint8

const (
	// ClipNone leaves the output untouched and only reports the overshoot.
	ClipNone ClipPolicy = iota
	// ClipHard clamps samples to [-1, 1].
	ClipHard
	// ClipSoft saturates samples with tanh.
	ClipSoft
)

func (p ClipPolicy) String() string {
	switch p {
	case ClipNone:
		return "none"
	case ClipHard:
		return "hard"
	case ClipSoft:
		return "soft"
	default:
		return "unknown"
	}
}

// ParseClipPolicy resolves a policy by its String name.
func ParseClipPolicy(name string) (ClipPolicy, error) {
	for p := ClipNone; p <= ClipSoft; p++ {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("granular: unknown clip policy %q", name)
}

func (e *Engine) applyClip(outL, outR []float64) {
	peak := math.Max(vecmath.MaxAbs(outL), vecmath.MaxAbs(outR))
	if peak <= 1 {
		return
	}

	e.emit(EventClip, -1, -1, peak)

	switch e.clip {
	case ClipHard:
		for i := range outL {
			outL[i] = core.Clamp(outL[i], -1, 1)
			outR[i] = core.Clamp(outR[i], -1, 1)
		}
	case ClipSoft:
		for i := range outL {
			outL[i] = math.Tanh(outL[i])
			outR[i] = math.Tanh(outR[i])
		}
	case ClipNone:
	}
}
