package moog

import (
	"testing"

	"github.com/cwbudde/algo-granular/internal/testutil"
)

func BenchmarkProcessInPlace(b *testing.B) {
	f, err := New(48000, WithCutoffHz(1200), WithResonance(2))
	if err != nil {
		b.Fatal(err)
	}
	buf := testutil.DeterministicNoise(7, 0.5, 256)

	b.ReportAllocs()
	b.SetBytes(int64(len(buf) * 8))
	b.ResetTimer()
	for range b.N {
		f.ProcessInPlace(buf)
	}
}

func BenchmarkRetune(b *testing.B) {
	f, err := New(48000)
	if err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	for i := range b.N {
		_ = f.SetCutoffHz(500 + float64(i%1000))
	}
}
