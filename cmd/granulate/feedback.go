package main

import (
	"slices"

	"github.com/pkg/errors"
	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/cwbudde/algo-granular/control"
)

const (
	feedbackResolution = 960
	feedbackBPM        = 120.0
	// microseconds per quarter note at feedbackBPM
	feedbackQuarterMicros = 60e6 / feedbackBPM
)

// feedbackRecorder collects the pad LED messages a control surface would
// receive, keeping only pads whose state changed.
type feedbackRecorder struct {
	mapper *control.Mapper
	last   []midi.Message
	events []control.TimedMessage
}

func newFeedbackRecorder(m *control.Mapper) *feedbackRecorder {
	return &feedbackRecorder{mapper: m}
}

func (r *feedbackRecorder) observe(micros int64, status, repeat uint32) {
	msgs := r.mapper.Feedback(status, repeat)
	for i, msg := range msgs {
		if r.last != nil && slices.Equal(r.last[i], msg) {
			continue
		}
		r.events = append(r.events, control.TimedMessage{Micros: micros, Msg: msg})
	}
	r.last = msgs
}

func (r *feedbackRecorder) len() int { return len(r.events) }

func microsToTicks(micros int64) uint32 {
	return uint32(float64(micros) * feedbackResolution / feedbackQuarterMicros)
}

func (r *feedbackRecorder) writeSMF(path string) error {
	s := smf.New()
	s.TimeFormat = smf.MetricTicks(feedbackResolution)

	var tr smf.Track
	tr.Add(0, smf.MetaTempo(feedbackBPM))
	var last uint32
	for _, ev := range r.events {
		tick := microsToTicks(ev.Micros)
		tr.Add(tick-last, ev.Msg)
		last = tick
	}
	tr.Close(0)

	if err := s.Add(tr); err != nil {
		return errors.Wrap(err, "feedback track")
	}
	return errors.Wrapf(s.WriteFile(path), "write %s", path)
}
