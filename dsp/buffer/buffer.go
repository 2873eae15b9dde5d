package buffer

// Buffer wraps a float64 slice whose capacity is fixed at construction.
// DSP functions accept raw []float64; use Samples() to bridge.
type Buffer struct {
	samples []float64
}

// New returns a zero-filled Buffer with the given length and capacity.
func New(length int) *Buffer {
	return NewWithCapacity(length, length)
}

// NewWithCapacity returns a zero-filled Buffer of length n backed by an array
// of capacity c. c is raised to n when smaller.
func NewWithCapacity(n, c int) *Buffer {
	if n < 0 {
		n = 0
	}
	if c < n {
		c = n
	}
	return &Buffer{samples: make([]float64, n, c)}
}

// Samples returns the underlying slice.
func (b *Buffer) Samples() []float64 {
	return b.samples
}

// Len returns the current number of samples.
func (b *Buffer) Len() int {
	return len(b.samples)
}

// Cap returns the fixed capacity of the backing array.
func (b *Buffer) Cap() int {
	return cap(b.samples)
}

// SetLen sets the length to n, clamped to [0, Cap()], and returns the length
// actually set. It never allocates. Newly exposed samples keep whatever the
// backing array held; callers that need silence must Zero them.
func (b *Buffer) SetLen(n int) int {
	if n < 0 {
		n = 0
	}
	if n > cap(b.samples) {
		n = cap(b.samples)
	}
	b.samples = b.samples[:n]
	return n
}

// Zero sets all samples to 0.
func (b *Buffer) Zero() {
	for i := range b.samples {
		b.samples[i] = 0
	}
}
