package buffer

import "sync"

// Pool provides sync.Pool-based reuse of stereo scratch blocks for hosts
// that render or stream outside the engine's own pre-sized storage.
type Pool struct {
	blockSize int
	pool      sync.Pool
}

// NewPool returns a Pool handing out one-block Stereo pairs.
func NewPool(blockSize int) *Pool {
	if blockSize < 1 {
		blockSize = 1
	}
	p := &Pool{blockSize: blockSize}
	p.pool.New = func() any {
		return NewStereo(blockSize, 1)
	}
	return p
}

// Get returns a zeroed one-block Stereo. Callers must return it via Put.
func (p *Pool) Get() *Stereo {
	s := p.pool.Get().(*Stereo)
	s.SetBlocks(1)
	s.Zero()
	return s
}

// Put returns s to the pool. Buffers of a different block size are dropped.
// The caller must not use s after calling Put.
func (p *Pool) Put(s *Stereo) {
	if s == nil || s.blockSize != p.blockSize {
		return
	}
	p.pool.Put(s)
}
