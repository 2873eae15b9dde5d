package granular

import (
	"testing"

	"github.com/cwbudde/algo-granular/dsp/core"
	"github.com/cwbudde/algo-granular/internal/testutil"
)

const (
	testRate  = 1000
	testBlock = 100
)

// newTestEngine builds an engine at 10 blocks per second, so a time byte v
// maps to 1 + int(v²·100/127²) blocks: 0→1, 13→2, 20→3, 30→6, 40→10, 127→101.
func newTestEngine(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	proc := core.ApplyProcessorOptions(
		core.WithSampleRate(testRate),
		core.WithBlockSize(testBlock),
	)
	e, err := New(append([]Option{WithProcessorConfig(proc)}, opts...)...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return e
}

func mustSet(t *testing.T, e *Engine, p Param, v uint8) {
	t.Helper()
	if err := e.SetParam(p, v); err != nil {
		t.Fatalf("SetParam(%s, %d) error = %v", p, v, err)
	}
}

// step runs one block and checks the pool invariants afterwards.
func step(t *testing.T, e *Engine, left, right []float64) (outL, outR []float64) {
	t.Helper()
	outL = make([]float64, len(left))
	outR = make([]float64, len(right))
	if err := e.Process(left, right, outL, outR); err != nil {
		t.Fatalf("Process() error = %v", err)
	}
	checkInvariants(t, e)
	return outL, outR
}

func checkInvariants(t *testing.T, e *Engine) {
	t.Helper()

	var perSlot [NumSlots]int
	active := 0
	for i := range MaxGrains {
		g, _ := e.Grain(i)
		if !g.InUse {
			continue
		}
		active++
		perSlot[g.Slot]++

		s, _ := e.Slot(g.Slot)
		if !s.InUse {
			t.Fatalf("block %d: grain %d reads free slot %d", e.Blocks(), i, g.Slot)
		}
		if g.Length > s.Blocks {
			t.Fatalf("block %d: grain %d length %d > slot blocks %d", e.Blocks(), i, g.Length, s.Blocks)
		}
		if g.Timer >= g.Length {
			t.Fatalf("block %d: grain %d timer %d >= length %d", e.Blocks(), i, g.Timer, g.Length)
		}
		if g.Ramp < 1 || g.Ramp > e.FadeLimit() {
			t.Fatalf("block %d: grain %d ramp %d outside [1, %d]", e.Blocks(), i, g.Ramp, e.FadeLimit())
		}
	}
	if active != e.ActiveGrains() {
		t.Fatalf("block %d: ActiveGrains() = %d, counted %d", e.Blocks(), e.ActiveGrains(), active)
	}

	status := e.Status()
	for i := range NumSlots {
		s, _ := e.Slot(i)
		if s.ActiveRepeats != perSlot[i] {
			t.Fatalf("block %d: slot %d active repeats %d, counted %d", e.Blocks(), i, s.ActiveRepeats, perSlot[i])
		}
		if s.InUse && s.Launched > s.Repeats {
			t.Fatalf("block %d: slot %d launched %d > repeats %d", e.Blocks(), i, s.Launched, s.Repeats)
		}
		if s.Loaded > s.Blocks {
			t.Fatalf("block %d: slot %d loaded %d > blocks %d", e.Blocks(), i, s.Loaded, s.Blocks)
		}
		if got := SlotStatus(status, i); got != s.State {
			t.Fatalf("block %d: status slot %d = %s, want %s", e.Blocks(), i, got, s.State)
		}
	}
}

type recorder struct {
	events []Event
}

func (r *recorder) Observe(ev Event) { r.events = append(r.events, ev) }

func (r *recorder) count(kind EventKind, slot int) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind && (slot < 0 || ev.Slot == slot) {
			n++
		}
	}
	return n
}

func (r *recorder) blocks(kind EventKind, slot int) []uint64 {
	var out []uint64
	for _, ev := range r.events {
		if ev.Kind == kind && (slot < 0 || ev.Slot == slot) {
			out = append(out, ev.Block)
		}
	}
	return out
}

func (r *recorder) slots(kind EventKind) []int {
	var out []int
	for _, ev := range r.events {
		if ev.Kind == kind {
			out = append(out, ev.Slot)
		}
	}
	return out
}

func dc(v float64) []float64 {
	return testutil.DC(v, testBlock)
}
