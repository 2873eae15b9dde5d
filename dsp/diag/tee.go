package diag

import "github.com/cwbudde/algo-granular/dsp/effects/granular"

// Tee forwards every event to each observer in order. Nil entries are
// skipped.
type Tee []granular.Observer

// Observe forwards ev.
func (t Tee) Observe(ev granular.Event) {
	for _, o := range t {
		if o != nil {
			o.Observe(ev)
		}
	}
}
