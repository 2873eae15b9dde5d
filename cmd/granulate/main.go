// Command granulate runs a WAV file through the granular repeat engine.
//
// Usage:
//
//	granulate [flags] -in input.wav -out output.wav
//
// The input is processed block by block. Parameters come from a preset,
// -set overrides, a MIDI automation file mapped through the pad-grid
// control surface, and scripted remote requests.
//
// Examples:
//
//	granulate -in drums.wav -out out.wav -preset 2
//	granulate -in voice.wav -out out.wav -set mode=13 -request 0:next:0 -request 40:repeat:0
//	granulate -in loop.wav -out out.wav -automation pads.mid -feedback leds.mid
//	granulate -in loop.wav -out out.wav -lpf 1800 -resonance 1.5 -report
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
)

type multiFlag []string

func (m *multiFlag) String() string { return strings.Join(*m, ",") }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}

type options struct {
	in, out      string
	blockSize    int
	bitDepth     int
	preset       int
	sets         multiFlag
	requests     multiFlag
	automation   string
	feedback     string
	channel      int
	lpf          float64
	resonance    float64
	clip         string
	insertion    bool
	maxCapture   float64
	tail         float64
	seed         int64
	report       bool
	play         bool
	debug        bool
	ringSize     int
	reportWindow int
}

func main() {
	var opts options

	flag.StringVar(&opts.in, "in", "", "input WAV file (required)")
	flag.StringVar(&opts.out, "out", "", "output WAV file")
	flag.IntVar(&opts.blockSize, "block", 256, "block size in frames")
	flag.IntVar(&opts.bitDepth, "bits", 16, "output bit depth (16 or 24)")
	flag.IntVar(&opts.preset, "preset", 0, "preset index (0-3)")
	flag.Var(&opts.sets, "set", "parameter override name=value (repeatable)")
	flag.Var(&opts.requests, "request", "scripted remote request block:command:slot (repeatable)")
	flag.StringVar(&opts.automation, "automation", "", "Standard MIDI File with control automation")
	flag.StringVar(&opts.feedback, "feedback", "", "write pad LED feedback to this Standard MIDI File")
	flag.IntVar(&opts.channel, "channel", -1, "MIDI channel 0-15 for automation (-1 = omni)")
	flag.Float64Var(&opts.lpf, "lpf", 0, "post lowpass cutoff in Hz (0 = off)")
	flag.Float64Var(&opts.resonance, "resonance", 0, "post lowpass resonance [0, 4]")
	flag.StringVar(&opts.clip, "clip", "none", "clip policy: none, hard or soft")
	flag.BoolVar(&opts.insertion, "insertion", false, "insertion mode (volume crossfades dry and wet)")
	flag.Float64Var(&opts.maxCapture, "max-capture", 10, "maximum capture length in seconds")
	flag.Float64Var(&opts.tail, "tail", 2, "seconds of silence rendered after the input")
	flag.Int64Var(&opts.seed, "seed", 1, "seed for random direction")
	flag.BoolVar(&opts.report, "report", false, "print a spectral report of the output")
	flag.BoolVar(&opts.play, "play", false, "play the output")
	flag.BoolVar(&opts.debug, "debug", false, "log engine events at debug level")
	flag.IntVar(&opts.ringSize, "events", 1024, "diagnostic event buffer size")
	flag.IntVar(&opts.reportWindow, "fft", 65536, "maximum FFT size for -report")
	flag.Parse()

	logger := newLogger(opts.debug)

	if opts.in == "" {
		fmt.Fprintln(os.Stderr, "granulate: -in is required")
		flag.Usage()
		os.Exit(2)
	}

	if err := run(context.Background(), opts, logger); err != nil {
		logger.Error("granulate failed", "err", err)
		os.Exit(1)
	}
}

func newLogger(debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger := slog.New(h)
	slog.SetDefault(logger)
	return logger
}
