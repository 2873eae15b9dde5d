package granular

// FadeFactor returns the amplitude of repeat r out of total for the fade
// byte. With fade1 = 2*fade/127 - 1 and f = r/total, a negative fade1 ramps
// the sequence in, (fade1+1)*f, and a non-negative one ramps it out,
// 1 - fade1*f. A non-positive total is treated as f = 0.
func FadeFactor(fade uint8, repeat, total int) float64 {
	if fade > 127 {
		fade = 127
	}
	fade1 := 2*float64(fade)/127 - 1

	f := 0.0
	if total > 0 {
		f = float64(repeat) / float64(total)
	}

	if fade1 < 0 {
		return (fade1 + 1) * f
	}
	return 1 - fade1*f
}
