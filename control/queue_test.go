package control

import (
	"errors"
	"testing"

	"github.com/cwbudde/algo-granular/dsp/effects/granular"
)

type recordingTarget struct {
	calls   []string
	pending uint32
}

func (r *recordingTarget) SetParam(p granular.Param, v uint8) error {
	r.calls = append(r.calls, Change{Kind: ChangeParam, Param: p, Value: v}.String())
	if p >= granular.NumParams {
		return granular.ErrUnknownParam
	}
	return nil
}

func (r *recordingTarget) ApplyPreset(n int) error {
	r.calls = append(r.calls, Change{Kind: ChangePreset, Value: uint8(n)}.String())
	return nil
}

func (r *recordingTarget) SubmitRequest(bits uint32) {
	r.calls = append(r.calls, Change{Kind: ChangeRequest, Request: bits}.String())
}

func (r *recordingTarget) PendingRequest() uint32 { return r.pending }

func TestQueueAppliesInOrder(t *testing.T) {
	q := NewQueue(8)
	q.SetParam(granular.ParamVolume, 100)
	q.ApplyPreset(2)
	q.Submit(granular.Request{Command: granular.CommandErase, Slot: 3})

	target := &recordingTarget{}
	n, err := q.Apply(target)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if n != 3 || q.Len() != 0 {
		t.Fatalf("Apply() = %d with %d pending, want 3 and 0", n, q.Len())
	}

	want := []string{"param volume=100", "preset 2", "request erase(3)"}
	for i := range want {
		if target.calls[i] != want[i] {
			t.Fatalf("call %d = %q, want %q", i, target.calls[i], want[i])
		}
	}
}

func TestQueueDropsWhenFull(t *testing.T) {
	q := NewQueue(2)
	for i := range 4 {
		ok := q.SetParam(granular.ParamPan, uint8(i))
		if ok != (i < 2) {
			t.Fatalf("push %d accepted = %v", i, ok)
		}
	}
	if q.Dropped() != 2 {
		t.Fatalf("Dropped() = %d, want 2", q.Dropped())
	}
}

func TestQueueJoinsErrors(t *testing.T) {
	q := NewQueue(4)
	q.SetParam(granular.NumParams, 1)
	q.SetParam(granular.ParamPan, 1)
	q.Push(Change{Kind: ChangeKind(9)})

	n, err := q.Apply(&recordingTarget{})
	if n != 3 {
		t.Fatalf("Apply() = %d, want 3", n)
	}
	if !errors.Is(err, granular.ErrUnknownParam) {
		t.Fatalf("Apply() error = %v, want ErrUnknownParam", err)
	}
}

func TestQueueDrivesEngine(t *testing.T) {
	e, err := granular.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	q := NewQueue(0)
	q.SetParam(granular.ParamRepeatCount, 7)
	q.ApplyPreset(3)
	q.SetParam(granular.ParamFade, 12)
	q.Submit(granular.Request{Command: granular.CommandCapture, Slot: 1})

	if _, err := q.Apply(e); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if e.Preset() != 3 || e.Param(granular.ParamFade) != 12 {
		t.Fatalf("preset/fade = %d/%d, want 3/12", e.Preset(), e.Param(granular.ParamFade))
	}
	// preset 3 replaced the earlier repeat count
	if e.RepeatCount() != 20 {
		t.Fatalf("RepeatCount() = %d, want 20", e.RepeatCount())
	}
	if e.PendingRequest() != (granular.RequestCapture | 1) {
		t.Fatalf("PendingRequest() = %#x", e.PendingRequest())
	}
}

func TestQueueHoldsRequestWhileOnePending(t *testing.T) {
	q := NewQueue(8)
	q.Submit(granular.Request{Command: granular.CommandCapture, Slot: 0})
	q.SetParam(granular.ParamPan, 10)
	q.Submit(granular.Request{Command: granular.CommandCapture, Slot: 1})
	q.SetParam(granular.ParamPan, 20)

	target := &recordingTarget{}
	steps := []struct {
		pending uint32
		applied int
		calls   []string
	}{
		{0, 1, []string{"request capture(0)"}},
		{granular.RequestCapture, 1, []string{"param pan=10"}},
		{granular.RequestCapture, 0, nil},
		{0, 1, []string{"request capture(1)"}},
		{0, 1, []string{"param pan=20"}},
		{0, 0, nil},
	}
	for i, tt := range steps {
		target.calls = nil
		target.pending = tt.pending
		n, err := q.Apply(target)
		if err != nil {
			t.Fatalf("step %d: Apply() error = %v", i, err)
		}
		if n != tt.applied || len(target.calls) != len(tt.calls) {
			t.Fatalf("step %d: Apply() = %d calls %v, want %d calls %v", i, n, target.calls, tt.applied, tt.calls)
		}
		for j := range tt.calls {
			if target.calls[j] != tt.calls[j] {
				t.Fatalf("step %d: call %d = %q, want %q", i, j, target.calls[j], tt.calls[j])
			}
		}
	}
	if q.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", q.Len())
	}
}

func TestQueueDeliversEveryRequestToEngine(t *testing.T) {
	e, err := granular.New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	e.SetMode(granular.Mode{RemoteOnly: true})

	q := NewQueue(0)
	q.Submit(granular.Request{Command: granular.CommandCapture, Slot: 0})
	q.Submit(granular.Request{Command: granular.CommandCapture, Slot: 1})

	bs := e.BlockSize()
	inL, inR := make([]float64, bs), make([]float64, bs)
	outL, outR := make([]float64, bs), make([]float64, bs)
	for i := range inL {
		inL[i], inR[i] = 0.25, 0.25
	}
	for block := range 3 {
		if _, err := q.Apply(e); err != nil {
			t.Fatalf("block %d: Apply() error = %v", block, err)
		}
		if err := e.Process(inL, inR, outL, outR); err != nil {
			t.Fatalf("block %d: Process() error = %v", block, err)
		}
	}

	for _, idx := range []int{0, 1} {
		s, _ := e.Slot(idx)
		if !s.InUse || s.Loaded == 0 {
			t.Fatalf("slot %d = %+v, want a capture in progress", idx, s)
		}
	}
	if q.Len() != 0 || e.PendingRequest() != 0 {
		t.Fatalf("Len/PendingRequest = %d/%#x, want both drained", q.Len(), e.PendingRequest())
	}
}
