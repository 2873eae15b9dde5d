package buffer

// Stereo is a pair of equally sized Buffers addressed in blocks of
// BlockSize frames.
type Stereo struct {
	Left, Right *Buffer
	blockSize   int
	maxBlocks   int
}

// NewStereo pre-allocates maxBlocks blocks of blockSize frames per channel.
// The initial length is zero blocks.
func NewStereo(blockSize, maxBlocks int) *Stereo {
	if blockSize < 1 {
		blockSize = 1
	}
	if maxBlocks < 0 {
		maxBlocks = 0
	}
	frames := blockSize * maxBlocks
	return &Stereo{
		Left:      NewWithCapacity(0, frames),
		Right:     NewWithCapacity(0, frames),
		blockSize: blockSize,
		maxBlocks: maxBlocks,
	}
}

// BlockSize returns the frames per block.
func (s *Stereo) BlockSize() int { return s.blockSize }

// MaxBlocks returns the block capacity.
func (s *Stereo) MaxBlocks() int { return s.maxBlocks }

// Blocks returns the current length in blocks.
func (s *Stereo) Blocks() int { return s.Left.Len() / s.blockSize }

// SetBlocks resizes both channels to n blocks, clamped to MaxBlocks, and
// returns the block count actually set. It never allocates.
func (s *Stereo) SetBlocks(n int) int {
	if n > s.maxBlocks {
		n = s.maxBlocks
	}
	if n < 0 {
		n = 0
	}
	s.Left.SetLen(n * s.blockSize)
	s.Right.SetLen(n * s.blockSize)
	return n
}

// WriteBlock copies one block of left/right frames into block index idx.
// It reports false, copying nothing, when idx is outside the current length.
func (s *Stereo) WriteBlock(idx int, left, right []float64) bool {
	dl, dr, ok := s.Block(idx)
	if !ok {
		return false
	}
	copy(dl, left)
	copy(dr, right)
	return true
}

// Block returns the left/right views of block idx.
func (s *Stereo) Block(idx int) (left, right []float64, ok bool) {
	if idx < 0 || idx >= s.Blocks() {
		return nil, nil, false
	}
	start := idx * s.blockSize
	end := start + s.blockSize
	return s.Left.samples[start:end], s.Right.samples[start:end], true
}

// Zero silences both channels over the current length.
func (s *Stereo) Zero() {
	s.Left.Zero()
	s.Right.Zero()
}
