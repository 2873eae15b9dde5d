package testutil

import (
	"math"
	"math/rand"
)

// DeterministicSine generates a deterministic sine wave.
func DeterministicSine(freqHz, sampleRate, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	step := 2 * math.Pi * freqHz / sampleRate
	for i := range out {
		out[i] = amplitude * math.Sin(step*float64(i))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// DC generates a constant-valued signal.
func DC(value float64, length int) []float64 {
	out := make([]float64, length)
	for i := range out {
		out[i] = value
	}
	return out
}

// Silence returns length zero samples.
func Silence(length int) []float64 {
	return make([]float64, length)
}

// Burst returns a signal that holds value over [start, end) and is silent
// elsewhere. Bounds are clamped to the signal.
func Burst(value float64, length, start, end int) []float64 {
	out := make([]float64, length)
	start = max(start, 0)
	end = min(end, length)
	for i := start; i < end; i++ {
		out[i] = value
	}
	return out
}

// StereoBlock is one block of left/right frames.
type StereoBlock struct {
	Left, Right []float64
}

// StereoBlocks splits a stereo signal into consecutive blocks of blockSize
// frames. A trailing partial block is zero-padded. The channels must have
// equal length.
func StereoBlocks(left, right []float64, blockSize int) []StereoBlock {
	if blockSize < 1 || len(left) != len(right) {
		return nil
	}
	n := (len(left) + blockSize - 1) / blockSize
	out := make([]StereoBlock, n)
	for b := range out {
		l := make([]float64, blockSize)
		r := make([]float64, blockSize)
		copy(l, left[b*blockSize:])
		copy(r, right[b*blockSize:])
		out[b] = StereoBlock{Left: l, Right: r}
	}
	return out
}
