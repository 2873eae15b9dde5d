package granular

import (
	"fmt"
	"math"
	"strings"

	"github.com/cwbudde/algo-granular/dsp/core"
)

// Param indexes the byte control surface. Every parameter takes a value in
// [0, 127]; larger values are clamped.
type Param int

const (
	ParamVolume Param = iota
	ParamPan
	ParamProgram
	ParamTriggerLevel
	ParamLength
	ParamRepeatTime
	ParamRepeatCount
	ParamRepeatLength
	ParamMode
	ParamFade
	ParamCrossover
	ParamSpare
	ParamFadeLimit

	// NumParams is the size of the control surface.
	NumParams
)

var paramNames = [NumParams]string{
	"volume",
	"pan",
	"program",
	"trigger",
	"length",
	"repeat-time",
	"repeat-count",
	"repeat-length",
	"mode",
	"fade",
	"crossover",
	"spare",
	"fade-limit",
}

func (p Param) String() string {
	if p < 0 || p >= NumParams {
		return fmt.Sprintf("param(%d)", int(p))
	}
	return paramNames[p]
}

// ParseParam resolves a parameter by its String name, case-insensitively.
func ParseParam(name string) (Param, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range paramNames {
		if n == name {
			return Param(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownParam, name)
}

const (
	maxRepeatCount = 20
	maxParamSecs   = 10.0
	// unlimitedRepeats stands in for "repeat forever" in remote mode.
	unlimitedRepeats = math.MaxInt32
	defaultFadeLimit = 20
)

// TriggerThreshold maps the trigger level byte to an envelope threshold:
// (v/127)^3 * 1.5.
func TriggerThreshold(v uint8) float64 {
	x := core.ByteUnit(v)
	return x * x * x * 1.5
}

// CrossoverWeight maps the crossover byte to a stereo weight,
// (v+50)/100 clamped to [0, 1].
func CrossoverWeight(v uint8) float64 {
	return core.Clamp((float64(v)+50)/100, 0, 1)
}

// RepeatCount maps the repeat count byte to a number of repeats in [0, 20].
func RepeatCount(v uint8) int {
	return core.ClampInt(int(v), 0, maxRepeatCount)
}

// ParamSeconds maps a time byte to seconds on a square-law curve topping
// out at ten seconds.
func ParamSeconds(v uint8) float64 {
	x := core.ByteUnit(v)
	return x * x * maxParamSecs
}

// PanGains returns the left and right gains for a pan byte. 64 is centre.
func PanGains(v uint8) (left, right float64) {
	if v > 127 {
		v = 127
	}
	t := 0.0
	if v > 0 {
		t = float64(v-1) / 126
	}
	return math.Cos(t * math.Pi / 2), math.Cos((1 - t) * math.Pi / 2)
}

// SystemVolume maps the volume byte to the wet gain used when the engine
// runs as a send effect: 0.01^(1-v/127) * 4, and 0 for v == 0.
func SystemVolume(v uint8) float64 {
	if v == 0 {
		return 0
	}
	return 4 * mathExp((1-core.ByteUnit(v))*math.Log(0.01))
}

// SetParam sets one control-surface byte and updates the derived value.
func (e *Engine) SetParam(p Param, v uint8) error {
	if p < 0 || p >= NumParams {
		return fmt.Errorf("%w: %d", ErrUnknownParam, int(p))
	}
	e.setParam(p, v)
	return nil
}

// Param returns the current byte of p, or 0 for an unknown parameter.
func (e *Engine) Param(p Param) uint8 {
	if p < 0 || p >= NumParams {
		return 0
	}
	return e.params[p]
}

// SetMode sets the mode byte from its decoded form.
func (e *Engine) SetMode(m Mode) {
	e.setParam(ParamMode, m.Encode())
}

// Mode returns the decoded mode byte.
func (e *Engine) Mode() Mode { return e.mode }

// Program returns the repeat cadence program.
func (e *Engine) Program() Program { return e.program }

// TriggerLevel returns the envelope threshold for local captures.
func (e *Engine) TriggerLevel() float64 { return e.trigLevel }

// CaptureBlocks returns the capture length in blocks for new captures.
func (e *Engine) CaptureBlocks() int { return e.captureBlocks }

// RepeatTimeBlocks returns the repeat cadence in blocks.
func (e *Engine) RepeatTimeBlocks() int { return e.repeatTime }

// RepeatCount returns the number of repeats armed by a new capture.
func (e *Engine) RepeatCount() int { return e.repeatCount }

// RepeatBlocks returns the grain length in blocks before capping to the slot.
func (e *Engine) RepeatBlocks() int { return e.repeatBlocks }

// Crossover returns the stereo crossover weight in [0, 1].
func (e *Engine) Crossover() float64 { return e.crossover }

// FadeLimit returns the click-ramp length in frames.
func (e *Engine) FadeLimit() int { return e.fadeLimit }

func (e *Engine) setParam(p Param, v uint8) {
	if v > 127 {
		v = 127
	}
	e.params[p] = v

	switch p {
	case ParamVolume:
		e.updateVolume()
	case ParamPan:
		e.panL, e.panR = PanGains(v)
	case ParamProgram:
		e.program = Program(v)
	case ParamTriggerLevel:
		e.trigLevel = TriggerThreshold(v)
	case ParamLength:
		e.captureBlocks = core.ClampInt(e.timeBlocks(v), 1, e.maxCaptureBlocks)
	case ParamRepeatTime:
		e.repeatTime = e.timeBlocks(v)
	case ParamRepeatCount:
		e.repeatCount = RepeatCount(v)
	case ParamRepeatLength:
		e.repeatBlocks = e.timeBlocks(v)
	case ParamMode:
		e.mode = DecodeMode(v)
	case ParamCrossover:
		e.crossover = CrossoverWeight(v)
	case ParamFadeLimit:
		e.fadeLimit = int(v)
		if e.fadeLimit < 1 {
			e.fadeLimit = 1
		}
	case ParamFade, ParamSpare:
		// read directly from params
	}
}

func (e *Engine) timeBlocks(v uint8) int {
	return 1 + e.proc.SecondsToBlocks(ParamSeconds(v))
}

func (e *Engine) updateVolume() {
	v := e.params[ParamVolume]
	if e.insertion {
		vol := core.ByteUnit(v)
		e.dryGain = math.Cos(vol * math.Pi / 2)
		e.wetGain = math.Sin(vol * math.Pi / 2)
		return
	}
	e.dryGain = 0
	e.wetGain = SystemVolume(v)
}
