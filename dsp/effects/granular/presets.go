package granular

import "fmt"

const presetSize = 10

// presets hold volume, pan, program, trigger, length, repeat time, repeat
// count, repeat length, mode and fade. Parameters past the table keep their
// defaults.
var presets = [...][presetSize]uint8{
	{80, 64, 63, 24, 50, 60, 70, 85, 5, 83},
	{80, 64, 69, 35, 30, 40, 50, 127, 0, 71},
	{80, 64, 69, 24, 20, 50, 60, 105, 75, 78},
	{90, 64, 51, 10, 80, 90, 100, 95, 21, 67},
}

// NumPresets is the number of built-in presets.
const NumPresets = len(presets)

var presetNames = [NumPresets]string{"Gran 1", "Gran 2", "Gran 3", "Gran 4"}

// PresetName returns the display name of preset n.
func PresetName(n int) string {
	if n < 0 || n >= NumPresets {
		return fmt.Sprintf("preset(%d)", n)
	}
	return presetNames[n]
}

// PresetValue returns the byte preset n assigns to p. Indices past the last
// preset resolve to the last one. In insertion mode the volume is halved.
func PresetValue(n int, p Param, insertion bool) uint8 {
	if n >= NumPresets {
		n = NumPresets - 1
	}
	if n < 0 || p < 0 || p >= NumParams {
		return 0
	}
	switch {
	case int(p) < presetSize:
		v := presets[n][p]
		if p == ParamVolume && insertion {
			v /= 2
		}
		return v
	case p == ParamFadeLimit:
		return defaultFadeLimit
	default:
		return 0
	}
}

// ApplyPreset loads preset n into the control surface. Indices past the last
// preset clamp to it; negative indices are rejected.
func (e *Engine) ApplyPreset(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidPreset, n)
	}
	if n >= NumPresets {
		n = NumPresets - 1
	}
	for p := Param(0); p < NumParams; p++ {
		e.setParam(p, PresetValue(n, p, e.insertion))
	}
	e.preset = n
	return nil
}

// Preset returns the index of the last applied preset.
func (e *Engine) Preset() int { return e.preset }
