package control

import (
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/cwbudde/algo-granular/dsp/effects/granular"
)

const defaultQueueSize = 128

// ChangeKind selects which field of a Change is used.
type ChangeKind uint8

const (
	// ChangeParam sets Param to Value.
	ChangeParam ChangeKind = iota
	// ChangePreset loads preset Value.
	ChangePreset
	// ChangeRequest submits Request as a remote request bitfield.
	ChangeRequest
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeParam:
		return "param"
	case ChangePreset:
		return "preset"
	case ChangeRequest:
		return "request"
	default:
		return "unknown"
	}
}

// Change is one queued control event.
type Change struct {
	Kind    ChangeKind
	Param   granular.Param
	Value   uint8
	Request uint32
}

func (c Change) String() string {
	switch c.Kind {
	case ChangeParam:
		return fmt.Sprintf("param %s=%d", c.Param, c.Value)
	case ChangePreset:
		return fmt.Sprintf("preset %d", c.Value)
	case ChangeRequest:
		return fmt.Sprintf("request %s", granular.DecodeRequest(c.Request))
	default:
		return "unknown"
	}
}

// Target is the engine side of a Queue.
type Target interface {
	SetParam(p granular.Param, v uint8) error
	ApplyPreset(n int) error
	SubmitRequest(bits uint32)
	PendingRequest() uint32
}

// Queue is a bounded multi-producer queue of control changes. Push never
// blocks; Apply is called by the single consumer.
type Queue struct {
	ch      chan Change
	dropped atomic.Uint64

	// held is a request taken off ch that t could not accept yet. Only the
	// consumer touches it.
	held *Change
}

// NewQueue creates a queue holding up to size changes. Non-positive sizes
// use a default of 128.
func NewQueue(size int) *Queue {
	if size <= 0 {
		size = defaultQueueSize
	}
	return &Queue{ch: make(chan Change, size)}
}

// Push queues c and reports whether it was accepted.
func (q *Queue) Push(c Change) bool {
	select {
	case q.ch <- c:
		return true
	default:
		q.dropped.Add(1)
		return false
	}
}

// SetParam queues a parameter change.
func (q *Queue) SetParam(p granular.Param, v uint8) bool {
	return q.Push(Change{Kind: ChangeParam, Param: p, Value: v})
}

// ApplyPreset queues a preset change.
func (q *Queue) ApplyPreset(n uint8) bool {
	return q.Push(Change{Kind: ChangePreset, Value: n})
}

// Submit queues a remote request.
func (q *Queue) Submit(r granular.Request) bool {
	return q.Push(Change{Kind: ChangeRequest, Request: r.Bits()})
}

// Len returns the number of pending changes, including a held request.
// It is only exact on the consumer goroutine.
func (q *Queue) Len() int {
	if q.held != nil {
		return len(q.ch) + 1
	}
	return len(q.ch)
}

// Dropped returns the number of changes rejected because the queue was full.
func (q *Queue) Dropped() uint64 { return q.dropped.Load() }

// Apply hands pending changes to t in arrival order without waiting for new
// ones. The engine actions one request per block, so Apply stops after
// submitting a request, and a request that meets another still pending on t
// is held for a later call. Everything queued behind a held request waits
// with it. Apply returns the number applied and the joined errors of the
// changes t rejected.
func (q *Queue) Apply(t Target) (int, error) {
	var errs []error
	n := 0
	if q.held != nil {
		if t.PendingRequest() != 0 {
			return 0, nil
		}
		t.SubmitRequest(q.held.Request)
		q.held = nil
		return 1, nil
	}
	for {
		select {
		case c := <-q.ch:
			if c.Kind == ChangeRequest {
				if t.PendingRequest() != 0 {
					q.held = &c
					return n, errors.Join(errs...)
				}
				t.SubmitRequest(c.Request)
				return n + 1, errors.Join(errs...)
			}
			if err := apply(t, c); err != nil {
				errs = append(errs, err)
			}
			n++
		default:
			return n, errors.Join(errs...)
		}
	}
}

func apply(t Target, c Change) error {
	switch c.Kind {
	case ChangeParam:
		return t.SetParam(c.Param, c.Value)
	case ChangePreset:
		return t.ApplyPreset(int(c.Value))
	case ChangeRequest:
		t.SubmitRequest(c.Request)
		return nil
	default:
		return fmt.Errorf("control: unknown change kind %d", c.Kind)
	}
}
