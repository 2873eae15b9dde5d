package diag

import (
	"sync/atomic"

	"github.com/cwbudde/algo-granular/dsp/effects/granular"
)

// Metrics counts engine events per kind. Observe is wait-free and Snapshot
// may be called from any goroutine.
type Metrics struct {
	counts  [granular.EventClip + 1]atomic.Uint64
	maxPeak atomic.Uint64 // milli-units of the largest clip peak
}

// Snapshot is a point-in-time copy of Metrics.
type Snapshot struct {
	Captures        uint64
	CapturesDone    uint64
	RepeatsArmed    uint64
	GrainsLaunched  uint64
	GrainsRetired   uint64
	LaunchesDropped uint64
	Erases          uint64
	Triggers        uint64
	ClippedBlocks   uint64
	// MaxClipPeak is the largest output peak seen in a clipped block.
	MaxClipPeak float64
}

// Observe counts ev.
func (m *Metrics) Observe(ev granular.Event) {
	if int(ev.Kind) >= len(m.counts) {
		return
	}
	m.counts[ev.Kind].Add(1)

	if ev.Kind != granular.EventClip {
		return
	}
	peak := uint64(ev.Value * 1000)
	for {
		cur := m.maxPeak.Load()
		if peak <= cur || m.maxPeak.CompareAndSwap(cur, peak) {
			return
		}
	}
}

// Count returns the number of events of kind seen so far.
func (m *Metrics) Count(kind granular.EventKind) uint64 {
	if int(kind) >= len(m.counts) {
		return 0
	}
	return m.counts[kind].Load()
}

// Snapshot returns the current counters.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		Captures:        m.Count(granular.EventCaptureStart),
		CapturesDone:    m.Count(granular.EventCaptureComplete),
		RepeatsArmed:    m.Count(granular.EventRepeatArm),
		GrainsLaunched:  m.Count(granular.EventGrainLaunch),
		GrainsRetired:   m.Count(granular.EventGrainRetire),
		LaunchesDropped: m.Count(granular.EventPoolExhausted),
		Erases:          m.Count(granular.EventErase),
		Triggers:        m.Count(granular.EventTrigger),
		ClippedBlocks:   m.Count(granular.EventClip),
		MaxClipPeak:     float64(m.maxPeak.Load()) / 1000,
	}
}

// Reset zeroes every counter.
func (m *Metrics) Reset() {
	for i := range m.counts {
		m.counts[i].Store(0)
	}
	m.maxPeak.Store(0)
}
