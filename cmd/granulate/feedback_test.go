package main

import (
	"path/filepath"
	"testing"

	"github.com/cwbudde/algo-granular/control"
	"github.com/cwbudde/algo-granular/dsp/effects/granular"
)

func TestFeedbackRecordsChangesOnly(t *testing.T) {
	r := newFeedbackRecorder(control.NewMapper(control.OmniChannel, nil))

	r.observe(0, 0, 0)
	if r.len() != 2*granular.NumSlots {
		t.Fatalf("initial events = %d, want %d", r.len(), 2*granular.NumSlots)
	}
	r.observe(1000, 0, 0)
	if r.len() != 2*granular.NumSlots {
		t.Fatalf("unchanged status recorded %d events", r.len()-2*granular.NumSlots)
	}
}

func TestFeedbackSMFRoundTrip(t *testing.T) {
	opts := testOptions()
	opts.sets = []string{"mode=4", "length=13"}
	opts.requests = []string{"0:capture:1", "5:erase:1"}
	h := newTestHost(t, opts)
	h.feedback = newFeedbackRecorder(h.mapper)

	in := make([]float64, 1000)
	if _, _, err := h.render(t.Context(), in, in, 0); err != nil {
		t.Fatalf("render() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "leds.mid")
	if err := h.feedback.writeSMF(path); err != nil {
		t.Fatalf("writeSMF() error = %v", err)
	}
	auto, err := control.LoadSMF(path)
	if err != nil {
		t.Fatalf("LoadSMF() error = %v", err)
	}
	if auto.Len() != h.feedback.len() {
		t.Fatalf("read back %d messages, wrote %d", auto.Len(), h.feedback.len())
	}
}

func TestMicrosToTicks(t *testing.T) {
	if got := microsToTicks(500000); got != feedbackResolution {
		t.Fatalf("microsToTicks(quarter) = %d", got)
	}
	if got := microsToTicks(0); got != 0 {
		t.Fatalf("microsToTicks(0) = %d", got)
	}
}
