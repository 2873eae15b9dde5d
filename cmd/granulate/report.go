package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"
	"github.com/pkg/errors"

	"github.com/cwbudde/algo-granular/dsp/core"
)

const minReportFrames = 64

// spectralReport summarizes a rendered signal. Spectral figures come from a
// Hann-windowed FFT of the centre segment of the mono downmix.
type spectralReport struct {
	Frames     int
	FFTSize    int
	SampleRate float64
	PeakSample float64
	RMSDB      float64
	PeakHz     float64
	PeakDB     float64
	CentroidHz float64
}

// reportSize returns the largest power of two not above min(n, limit).
func reportSize(n, limit int) int {
	if limit > 0 && limit < n {
		n = limit
	}
	size := 1
	for size*2 <= n {
		size *= 2
	}
	return size
}

func analyze(left, right []float64, sampleRate float64, maxSize int) (spectralReport, error) {
	n := min(len(left), len(right))
	if n < minReportFrames {
		return spectralReport{}, errors.Errorf("need at least %d frames, have %d", minReportFrames, n)
	}

	rep := spectralReport{
		Frames:     n,
		FFTSize:    reportSize(n, maxSize),
		SampleRate: sampleRate,
		PeakSample: math.Max(vecmath.MaxAbs(left[:n]), vecmath.MaxAbs(right[:n])),
	}

	var energy float64
	for i := range n {
		m := 0.5 * (left[i] + right[i])
		energy += m * m
	}
	rep.RMSDB = core.LinearToDB(math.Sqrt(energy / float64(n)))

	size := rep.FFTSize
	start := (n - size) / 2
	in := make([]complex128, size)
	var windowSum float64
	for i := range size {
		w := 0.5 - 0.5*math.Cos(2*math.Pi*float64(i)/float64(size-1))
		windowSum += w
		m := 0.5 * (left[start+i] + right[start+i])
		in[i] = complex(m*w, 0)
	}

	plan, err := algofft.NewPlan64(size)
	if err != nil {
		return spectralReport{}, errors.Wrap(err, "fft plan")
	}
	out := make([]complex128, size)
	if err := plan.Forward(out, in); err != nil {
		return spectralReport{}, errors.Wrap(err, "fft")
	}

	bins := size/2 + 1
	re := make([]float64, bins)
	im := make([]float64, bins)
	for k := range bins {
		re[k] = real(out[k])
		im[k] = imag(out[k])
	}
	mag := make([]float64, bins)
	vecmath.Magnitude(mag, re, im)

	binHz := sampleRate / float64(size)
	peak := 1
	var weighted, total float64
	for k := 1; k < bins; k++ {
		if mag[k] > mag[peak] {
			peak = k
		}
		weighted += float64(k) * binHz * mag[k]
		total += mag[k]
	}
	rep.PeakHz = float64(peak) * binHz
	rep.PeakDB = core.LinearToDB(2 * mag[peak] / windowSum)
	if total > 0 {
		rep.CentroidHz = weighted / total
	}
	return rep, nil
}

func (r spectralReport) print(w io.Writer) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "frames\t%d\n", r.Frames)
	fmt.Fprintf(tw, "duration\t%.3f s\n", float64(r.Frames)/r.SampleRate)
	fmt.Fprintf(tw, "peak sample\t%.4f\n", r.PeakSample)
	fmt.Fprintf(tw, "rms\t%.2f dBFS\n", r.RMSDB)
	fmt.Fprintf(tw, "fft size\t%d\n", r.FFTSize)
	fmt.Fprintf(tw, "spectral peak\t%.1f Hz (%.2f dB)\n", r.PeakHz, r.PeakDB)
	fmt.Fprintf(tw, "spectral centroid\t%.1f Hz\n", r.CentroidHz)
	tw.Flush()
}
