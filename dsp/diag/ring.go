package diag

import (
	"context"
	"log/slog"
	"sync/atomic"

	"github.com/cwbudde/algo-granular/dsp/effects/granular"
)

const defaultRingSize = 256

// Ring is a bounded, non-blocking event queue. Observe never blocks; events
// arriving while the queue is full are counted and dropped.
type Ring struct {
	ch      chan granular.Event
	dropped atomic.Uint64
}

// NewRing creates a ring holding up to size events. Non-positive sizes use
// a default of 256.
func NewRing(size int) *Ring {
	if size <= 0 {
		size = defaultRingSize
	}
	return &Ring{ch: make(chan granular.Event, size)}
}

// Observe queues ev, dropping it when the ring is full.
func (r *Ring) Observe(ev granular.Event) {
	select {
	case r.ch <- ev:
	default:
		r.dropped.Add(1)
	}
}

// Dropped returns the number of events lost to overflow.
func (r *Ring) Dropped() uint64 { return r.dropped.Load() }

// Len returns the number of queued events.
func (r *Ring) Len() int { return len(r.ch) }

// Events exposes the queue for consumers that handle events themselves.
func (r *Ring) Events() <-chan granular.Event { return r.ch }

// Drain logs queued events until ctx is cancelled, then logs whatever is
// still queued and returns ctx.Err().
func (r *Ring) Drain(ctx context.Context, logger *slog.Logger) error {
	for {
		select {
		case ev := <-r.ch:
			Log(ctx, logger, ev)
		case <-ctx.Done():
			r.Flush(logger)
			return ctx.Err()
		}
	}
}

// Flush logs every queued event without waiting and returns the count.
func (r *Ring) Flush(logger *slog.Logger) int {
	n := 0
	for {
		select {
		case ev := <-r.ch:
			Log(context.Background(), logger, ev)
			n++
		default:
			if d := r.dropped.Swap(0); d > 0 {
				logger.Warn("diagnostic events dropped", slog.Uint64("count", d))
			}
			return n
		}
	}
}

// Level is the slog level an event is logged at.
func Level(kind granular.EventKind) slog.Level {
	switch kind {
	case granular.EventClip, granular.EventPoolExhausted:
		return slog.LevelWarn
	case granular.EventCaptureStart, granular.EventCaptureComplete,
		granular.EventRepeatArm, granular.EventErase:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}

// Log writes ev to logger as one structured record.
func Log(ctx context.Context, logger *slog.Logger, ev granular.Event) {
	attrs := []slog.Attr{slog.Uint64("block", ev.Block)}
	if ev.Slot >= 0 {
		attrs = append(attrs, slog.Int("slot", ev.Slot))
	}
	if ev.Grain >= 0 {
		attrs = append(attrs, slog.Int("grain", ev.Grain))
	}
	attrs = append(attrs, slog.Float64("value", ev.Value))
	logger.LogAttrs(ctx, Level(ev.Kind), ev.Kind.String(), attrs...)
}
