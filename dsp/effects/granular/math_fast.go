//go:build fastmath

package granular

import (
	"github.com/meko-christian/algo-approx"
)

// mathSqrt computes sqrt(x) using fast approximation. Only the envelope
// follower uses it, where a small relative error is inaudible.
func mathSqrt(x float64) float64 {
	return approx.FastSqrt(x)
}

// mathExp computes e^x using fast approximation.
func mathExp(x float64) float64 {
	return approx.FastExp(x)
}
