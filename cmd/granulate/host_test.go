package main

import (
	"context"
	"io"
	"log/slog"
	"testing"

	midi "gitlab.com/gomidi/midi/v2"

	"github.com/cwbudde/algo-granular/control"
	"github.com/cwbudde/algo-granular/dsp/effects/granular"
	"github.com/cwbudde/algo-granular/internal/testutil"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testOptions() options {
	return options{
		blockSize:  100,
		bitDepth:   16,
		clip:       "none",
		maxCapture: 10,
		seed:       1,
		ringSize:   64,
		channel:    -1,
	}
}

func newTestHost(t *testing.T, opts options) *host {
	t.Helper()
	eng, err := newEngine(opts, 1000, nil)
	if err != nil {
		t.Fatalf("newEngine() error = %v", err)
	}
	script, err := parseRequests(opts.requests)
	if err != nil {
		t.Fatalf("parseRequests() error = %v", err)
	}
	q := control.NewQueue(0)
	return &host{
		eng:    eng,
		queue:  q,
		mapper: control.NewMapper(control.OmniChannel, q),
		script: script,
		logger: discardLogger(),
	}
}

func TestParseRequest(t *testing.T) {
	tests := []struct {
		in      string
		want    scriptedRequest
		wantErr bool
	}{
		{in: "0:capture:2", want: scriptedRequest{0, granular.Request{Command: granular.CommandCapture, Slot: 2}}},
		{in: "40:repeat:7", want: scriptedRequest{40, granular.Request{Command: granular.CommandRepeat, Slot: 7}}},
		{in: "3:next:0", want: scriptedRequest{3, granular.Request{Command: granular.CommandNext}}},
		{in: "3:next", wantErr: true},
		{in: "x:erase:1", wantErr: true},
		{in: "1:explode:1", wantErr: true},
		{in: "1:erase:8", wantErr: true},
		{in: "1:erase:-1", wantErr: true},
	}
	for _, tc := range tests {
		got, err := parseRequest(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Fatalf("parseRequest(%q) expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("parseRequest(%q) error = %v", tc.in, err)
		}
		if got != tc.want {
			t.Fatalf("parseRequest(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestParseRequestsSortsByBlock(t *testing.T) {
	got, err := parseRequests([]string{"9:erase:1", "2:capture:1", "9:capture:3"})
	if err != nil {
		t.Fatalf("parseRequests() error = %v", err)
	}
	want := []uint64{2, 9, 9}
	for i, r := range got {
		if r.block != want[i] {
			t.Fatalf("block[%d] = %d, want %d", i, r.block, want[i])
		}
	}
	if got[1].req.Command != granular.CommandErase {
		t.Fatalf("equal blocks reordered: %v", got[1].req)
	}
}

func TestParseSetting(t *testing.T) {
	p, v, err := parseSetting("repeat-count=12")
	if err != nil {
		t.Fatalf("parseSetting() error = %v", err)
	}
	if p != granular.ParamRepeatCount || v != 12 {
		t.Fatalf("parseSetting() = %v, %d", p, v)
	}
	for _, bad := range []string{"volume", "nope=1", "volume=300", "volume=-1"} {
		if _, _, err := parseSetting(bad); err == nil {
			t.Fatalf("parseSetting(%q) expected error", bad)
		}
	}
}

func TestMidiChannel(t *testing.T) {
	if got := midiChannel(-1); got != control.OmniChannel {
		t.Fatalf("midiChannel(-1) = %d", got)
	}
	if got := midiChannel(16); got != control.OmniChannel {
		t.Fatalf("midiChannel(16) = %d", got)
	}
	if got := midiChannel(9); got != 9 {
		t.Fatalf("midiChannel(9) = %d", got)
	}
}

func TestNewEngineRejectsBadOptions(t *testing.T) {
	opts := testOptions()
	opts.clip = "fold"
	if _, err := newEngine(opts, 1000, nil); err == nil {
		t.Fatal("expected error for unknown clip policy")
	}

	opts = testOptions()
	opts.lpf = 600
	if _, err := newEngine(opts, 1000, nil); err == nil {
		t.Fatal("expected error for lowpass above Nyquist")
	}

	opts = testOptions()
	opts.sets = []string{"volume=abc"}
	if _, err := newEngine(opts, 1000, nil); err == nil {
		t.Fatal("expected error for bad setting")
	}
}

func TestRenderScriptedCapture(t *testing.T) {
	opts := testOptions()
	opts.sets = []string{"mode=4", "length=13"}
	opts.requests = []string{"0:capture:2"}
	h := newTestHost(t, opts)
	h.feedback = newFeedbackRecorder(h.mapper)

	in := testutil.DC(0.5, 450)
	outL, outR, err := h.render(context.Background(), in, in, 1)
	if err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if len(outL) != 600 || len(outR) != 600 {
		t.Fatalf("rendered %d/%d frames, want 600", len(outL), len(outR))
	}
	testutil.RequireFinite(t, outL)

	info, _ := h.eng.Slot(2)
	if info.State != granular.SlotReady || info.Loaded != 2 {
		t.Fatalf("slot 2 = %+v, want ready with 2 blocks", info)
	}
	if h.feedback.len() <= 2*granular.NumSlots {
		t.Fatalf("feedback events = %d, want the initial pad state plus changes", h.feedback.len())
	}
}

func TestRenderAutomation(t *testing.T) {
	opts := testOptions()
	opts.sets = []string{"mode=0", "length=13"}
	h := newTestHost(t, opts)

	capturePad, _ := control.PadNote(granular.CommandCapture, 5)
	h.auto = control.NewAutomation([]control.TimedMessage{
		{Micros: 100000, Msg: midi.NoteOn(0, capturePad, 100)},
		{Micros: 0, Msg: midi.ControlChange(0, control.CCParamBase+uint8(granular.ParamMode-granular.ParamProgram), 4)},
	})

	in := testutil.DC(0.25, 500)
	if _, _, err := h.render(context.Background(), in, in, 0); err != nil {
		t.Fatalf("render() error = %v", err)
	}
	if !h.eng.Mode().RemoteOnly {
		t.Fatal("mode CC was not applied")
	}
	info, _ := h.eng.Slot(5)
	if info.State != granular.SlotReady {
		t.Fatalf("slot 5 = %+v, want ready", info)
	}
	if h.auto.Remaining() != 0 {
		t.Fatalf("automation remaining = %d", h.auto.Remaining())
	}
}

func TestRenderCancelled(t *testing.T) {
	h := newTestHost(t, testOptions())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := testutil.Silence(100)
	if _, _, err := h.render(ctx, in, in, 0); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
