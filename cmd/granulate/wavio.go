package main

import (
	"io"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/pkg/errors"

	"github.com/cwbudde/algo-granular/dsp/core"
)

const wavFormatPCM = 1

// track is a decoded stereo signal. Mono input is duplicated to both
// channels; channels past the second are ignored.
type track struct {
	left, right []float64
	sampleRate  int
	channels    int
	bitDepth    int
}

func readWAV(path string) (track, error) {
	f, err := os.Open(path)
	if err != nil {
		return track{}, errors.Wrap(err, "open input")
	}
	defer f.Close()

	t, err := decodeWAV(f)
	if err != nil {
		return track{}, errors.Wrapf(err, "decode %s", path)
	}
	return t, nil
}

func decodeWAV(r io.ReadSeeker) (track, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return track{}, errors.New("invalid WAV file")
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return track{}, errors.Errorf("unsupported WAV format %d, want integer PCM", dec.WavAudioFormat)
	}

	if err := dec.FwdToPCM(); err != nil {
		return track{}, errors.Wrap(err, "seek PCM")
	}

	channels := int(dec.NumChans)
	bitDepth := int(dec.SampleBitDepth())
	if channels < 1 {
		return track{}, errors.New("WAV file has no channels")
	}
	if bitDepth < 16 || bitDepth > 32 {
		return track{}, errors.Errorf("unsupported bit depth %d", bitDepth)
	}

	bytesPerSample := (bitDepth-1)/8 + 1
	buf := &audio.IntBuffer{
		Format:         dec.Format(),
		Data:           make([]int, int(dec.PCMLen())/bytesPerSample),
		SourceBitDepth: bitDepth,
	}
	n, err := dec.PCMBuffer(buf)
	if err != nil {
		return track{}, errors.Wrap(err, "read PCM")
	}
	buf.Data = buf.Data[:n]

	scale := 1 / math.Pow(2, float64(bitDepth-1))
	frames := len(buf.Data) / channels
	t := track{
		left:       make([]float64, frames),
		right:      make([]float64, frames),
		sampleRate: int(dec.SampleRate),
		channels:   channels,
		bitDepth:   bitDepth,
	}
	for i := range frames {
		t.left[i] = float64(buf.Data[i*channels]) * scale
		if channels > 1 {
			t.right[i] = float64(buf.Data[i*channels+1]) * scale
		} else {
			t.right[i] = t.left[i]
		}
	}
	return t, nil
}

func writeWAV(path string, left, right []float64, sampleRate, bitDepth int) error {
	if bitDepth != 16 && bitDepth != 24 {
		return errors.Errorf("output bit depth must be 16 or 24: %d", bitDepth)
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output")
	}
	if err := encodeWAV(f, left, right, sampleRate, bitDepth); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s", path)
	}
	return errors.Wrap(f.Close(), "close output")
}

func encodeWAV(w io.WriteSeeker, left, right []float64, sampleRate, bitDepth int) error {
	enc := wav.NewEncoder(w, sampleRate, bitDepth, 2, wavFormatPCM)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 2,
			SampleRate:  sampleRate,
		},
		Data:           interleavePCM(left, right, bitDepth),
		SourceBitDepth: bitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return err
	}
	return enc.Close()
}

// interleavePCM quantizes a stereo pair to signed integers, clamping to
// full scale.
func interleavePCM(left, right []float64, bitDepth int) []int {
	full := math.Pow(2, float64(bitDepth-1)) - 1
	n := min(len(left), len(right))
	data := make([]int, 2*n)
	for i := range n {
		data[2*i] = int(math.Round(core.Clamp(left[i], -1, 1) * full))
		data[2*i+1] = int(math.Round(core.Clamp(right[i], -1, 1) * full))
	}
	return data
}
