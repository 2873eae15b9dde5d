//go:build !fastmath

package granular

import "math"

func mathSqrt(x float64) float64 {
	return math.Sqrt(x)
}

func mathExp(x float64) float64 {
	return math.Exp(x)
}
