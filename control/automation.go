package control

import (
	"fmt"
	"slices"

	midi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// TimedMessage is a channel message at an absolute time.
type TimedMessage struct {
	Micros int64
	Msg    midi.Message
}

// Automation replays timed MIDI messages against a block clock.
type Automation struct {
	events []TimedMessage
	next   int
}

// NewAutomation sorts events by time, keeping the order of simultaneous
// events.
func NewAutomation(events []TimedMessage) *Automation {
	sorted := slices.Clone(events)
	slices.SortStableFunc(sorted, func(a, b TimedMessage) int {
		switch {
		case a.Micros < b.Micros:
			return -1
		case a.Micros > b.Micros:
			return 1
		default:
			return 0
		}
	})
	return &Automation{events: sorted}
}

// LoadSMF reads the channel messages of every track in a Standard MIDI
// File. Meta and system messages are skipped.
func LoadSMF(path string) (*Automation, error) {
	var events []TimedMessage
	err := smf.ReadTracks(path).Do(func(te smf.TrackEvent) {
		msg := midi.Message(te.Message)
		var ch uint8
		if !msg.GetChannel(&ch) {
			return
		}
		events = append(events, TimedMessage{Micros: te.AbsMicroSeconds, Msg: msg})
	}).Error()
	if err != nil {
		return nil, fmt.Errorf("control: read %s: %w", path, err)
	}
	return NewAutomation(events), nil
}

// Len returns the number of messages.
func (a *Automation) Len() int { return len(a.events) }

// Remaining returns the number of messages not yet delivered.
func (a *Automation) Remaining() int { return len(a.events) - a.next }

// Rewind restarts delivery from the first message.
func (a *Automation) Rewind() { a.next = 0 }

// Due calls fn for every undelivered message timed before the end of the
// given block and returns how many were delivered.
func (a *Automation) Due(block uint64, sampleRate float64, blockSize int, fn func(midi.Message)) int {
	end := BlockMicros(block+1, sampleRate, blockSize)
	n := 0
	for a.next < len(a.events) && a.events[a.next].Micros < end {
		fn(a.events[a.next].Msg)
		a.next++
		n++
	}
	return n
}

// BlockMicros returns the start time of block in microseconds.
func BlockMicros(block uint64, sampleRate float64, blockSize int) int64 {
	if sampleRate <= 0 {
		return 0
	}
	return int64(float64(block) * float64(blockSize) * 1e6 / sampleRate)
}
