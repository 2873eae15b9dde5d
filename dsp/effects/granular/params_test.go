package granular

import (
	"errors"
	"math"
	"testing"

	"github.com/cwbudde/algo-granular/dsp/core"
)

func TestParseParam(t *testing.T) {
	for p := Param(0); p < NumParams; p++ {
		got, err := ParseParam(p.String())
		if err != nil {
			t.Fatalf("ParseParam(%q) error = %v", p.String(), err)
		}
		if got != p {
			t.Fatalf("ParseParam(%q) = %v, want %v", p.String(), got, p)
		}
	}

	if got, err := ParseParam(" Repeat-Time "); err != nil || got != ParamRepeatTime {
		t.Fatalf("ParseParam() = %v, %v; want repeat-time", got, err)
	}
	if _, err := ParseParam("reverb"); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("ParseParam(reverb) error = %v, want ErrUnknownParam", err)
	}
}

func TestSetParamRejectsUnknown(t *testing.T) {
	e := newTestEngine(t)
	if err := e.SetParam(NumParams, 1); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("SetParam() error = %v, want ErrUnknownParam", err)
	}
	if err := e.SetParam(-1, 1); !errors.Is(err, ErrUnknownParam) {
		t.Fatalf("SetParam() error = %v, want ErrUnknownParam", err)
	}
	if e.Param(NumParams) != 0 {
		t.Fatal("Param(NumParams) != 0")
	}
}

func TestSetParamClampsAndStoresRawByte(t *testing.T) {
	e := newTestEngine(t)
	mustSet(t, e, ParamSpare, 200)
	if got := e.Param(ParamSpare); got != 127 {
		t.Fatalf("Param(spare) = %d, want 127", got)
	}

	mustSet(t, e, ParamFadeLimit, 0)
	if e.FadeLimit() != 1 {
		t.Fatalf("FadeLimit() = %d, want 1", e.FadeLimit())
	}
}

func TestTimeParamsMapToBlocks(t *testing.T) {
	tests := []struct {
		value uint8
		want  int
	}{
		{0, 1},
		{13, 2},
		{20, 3},
		{30, 6},
		{40, 10},
		{127, 101},
	}

	e := newTestEngine(t)
	for _, tt := range tests {
		mustSet(t, e, ParamLength, tt.value)
		mustSet(t, e, ParamRepeatTime, tt.value)
		mustSet(t, e, ParamRepeatLength, tt.value)

		if e.CaptureBlocks() != tt.want || e.RepeatTimeBlocks() != tt.want || e.RepeatBlocks() != tt.want {
			t.Fatalf("value %d: blocks = %d/%d/%d, want %d",
				tt.value, e.CaptureBlocks(), e.RepeatTimeBlocks(), e.RepeatBlocks(), tt.want)
		}
	}
}

func shortCaptureConfig() core.ProcessorConfig {
	return core.ApplyProcessorOptions(
		core.WithSampleRate(testRate),
		core.WithBlockSize(testBlock),
		core.WithMaxCaptureSeconds(1),
	)
}

func TestCaptureLengthCappedBySlotCapacity(t *testing.T) {
	short := newTestEngine(t, WithProcessorConfig(shortCaptureConfig()))
	mustSet(t, short, ParamLength, 127)
	if short.CaptureBlocks() != short.MaxCaptureBlocks() {
		t.Fatalf("CaptureBlocks() = %d, want capacity %d", short.CaptureBlocks(), short.MaxCaptureBlocks())
	}
	if short.MaxCaptureBlocks() != 11 {
		t.Fatalf("MaxCaptureBlocks() = %d, want 11", short.MaxCaptureBlocks())
	}
}

func TestMappingCurves(t *testing.T) {
	if got, want := TriggerThreshold(24), math.Pow(24.0/127, 3)*1.5; math.Abs(got-want) > 1e-15 {
		t.Fatalf("TriggerThreshold(24) = %v, want %v", got, want)
	}
	if got := TriggerThreshold(127); got != 1.5 {
		t.Fatalf("TriggerThreshold(127) = %v, want 1.5", got)
	}

	crossover := []struct {
		v    uint8
		want float64
	}{
		{0, 0.5},
		{25, 0.75},
		{50, 1},
		{127, 1},
	}
	for _, tt := range crossover {
		if got := CrossoverWeight(tt.v); math.Abs(got-tt.want) > 1e-15 {
			t.Fatalf("CrossoverWeight(%d) = %v, want %v", tt.v, got, tt.want)
		}
	}

	for v, want := range map[uint8]int{0: 0, 7: 7, 20: 20, 21: 20, 127: 20} {
		if got := RepeatCount(v); got != want {
			t.Fatalf("RepeatCount(%d) = %d, want %d", v, got, want)
		}
	}

	if SystemVolume(0) != 0 {
		t.Fatal("SystemVolume(0) != 0")
	}
	if got := SystemVolume(127); math.Abs(got-4) > 1e-9 {
		t.Fatalf("SystemVolume(127) = %v, want 4", got)
	}
	if got, want := SystemVolume(64), 4*math.Pow(0.01, 1-64.0/127); math.Abs(got-want) > 1e-6 {
		t.Fatalf("SystemVolume(64) = %v, want %v", got, want)
	}
}

func TestPanGains(t *testing.T) {
	l, r := PanGains(64)
	if math.Abs(l-r) > 1e-12 || math.Abs(l-math.Sqrt2/2) > 1e-12 {
		t.Fatalf("PanGains(64) = %v/%v, want equal power centre", l, r)
	}

	l, r = PanGains(1)
	if math.Abs(l-1) > 1e-12 || math.Abs(r) > 1e-12 {
		t.Fatalf("PanGains(1) = %v/%v, want hard left", l, r)
	}

	l, r = PanGains(127)
	if math.Abs(l) > 1e-12 || math.Abs(r-1) > 1e-12 {
		t.Fatalf("PanGains(127) = %v/%v, want hard right", l, r)
	}

	if l0, r0 := PanGains(0); l0 != 1 || math.Abs(r0) > 1e-12 {
		t.Fatalf("PanGains(0) = %v/%v, want hard left", l0, r0)
	}
}

func TestModeRoundTrip(t *testing.T) {
	e := newTestEngine(t)
	m := Mode{Direction: DirectionRandom, RemoteOnly: true}
	e.SetMode(m)

	if e.Param(ParamMode) != 7 {
		t.Fatalf("Param(mode) = %d, want 7", e.Param(ParamMode))
	}
	if e.Mode() != m {
		t.Fatalf("Mode() = %+v, want %+v", e.Mode(), m)
	}

	// bits above overlay are ignored
	got := DecodeMode(0xF6)
	want := Mode{Direction: DirectionAlternate, RemoteOnly: true}
	if got != want {
		t.Fatalf("DecodeMode(0xF6) = %+v, want %+v", got, want)
	}
}

func TestProgramParam(t *testing.T) {
	e := newTestEngine(t)
	mustSet(t, e, ParamProgram, 2)
	if e.Program() != ProgramDecreasing {
		t.Fatalf("Program() = %s, want decreasing", e.Program())
	}
	if Program(9).String() != "standard" {
		t.Fatalf("Program(9).String() = %q, want standard", Program(9).String())
	}
}
