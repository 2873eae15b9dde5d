package core

// Zero sets all values in buf to 0.
func Zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

// AbsMean2 returns the per-frame mean of |a[i]| and |b[i]| summed over the
// shorter of the two slices into dst. dst must be at least that long.
func AbsMean2(dst, a, b []float64) int {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		x, y := a[i], b[i]
		if x < 0 {
			x = -x
		}
		if y < 0 {
			y = -y
		}
		dst[i] = (x + y) * 0.5
	}
	return n
}
