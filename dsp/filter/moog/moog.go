package moog

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-granular/dsp/core"
)

const (
	defaultCutoffHz  = 1000.0
	defaultResonance = 0.0
	defaultGainDB    = 0.0

	minCutoffHz  = 1.0
	maxResonance = 4.0
	maxGainDB    = 24.0

	// squarings is the number of times the small-step matrix is squared, so
	// one sample is integrated in 2^squarings Euler steps.
	squarings = 10

	stateLimit = 32.0
)

// Option mutates constructor configuration.
type Option func(*config) error

type config struct {
	cutoffHz  float64
	resonance float64
	gainDB    float64
}

func defaultConfig() config {
	return config{
		cutoffHz:  defaultCutoffHz,
		resonance: defaultResonance,
		gainDB:    defaultGainDB,
	}
}

// WithCutoffHz sets cutoff in Hz. Must be finite, >= 1 and below Nyquist.
func WithCutoffHz(cutoffHz float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(cutoffHz, minCutoffHz, math.Inf(1), "cutoff"); err != nil {
			return err
		}
		cfg.cutoffHz = cutoffHz
		return nil
	}
}

// WithResonance sets the ladder feedback k in [0, 4]. The ladder
// self-oscillates as k approaches 4.
func WithResonance(resonance float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(resonance, 0, maxResonance, "resonance"); err != nil {
			return err
		}
		cfg.resonance = resonance
		return nil
	}
}

// WithGainDB sets the input gain in dB, [-24, 24]. Higher gain drives the
// nonlinearities harder.
func WithGainDB(db float64) Option {
	return func(cfg *config) error {
		if err := validateFiniteRange(db, -maxGainDB, maxGainDB, "gain"); err != nil {
			return err
		}
		cfg.gainDB = db
		return nil
	}
}

// State is the ladder's four stage outputs.
type State struct {
	Stage [4]float64
}

// Filter is a mono nonlinear Moog ladder.
//
// Filter is real-time safe and not thread-safe.
type Filter struct {
	sampleRate float64
	cutoffHz   float64
	resonance  float64
	gainDB     float64
	gain       float64

	// b drives the stages from the input term, c from the stage terms.
	b [4]float64
	c [4][4]float64
	y [4]float64
}

// New creates a ladder filter.
func New(sampleRate float64, opts ...Option) (*Filter, error) {
	if err := validateFiniteRange(sampleRate, 1, math.Inf(1), "sample rate"); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	f := &Filter{
		sampleRate: sampleRate,
		cutoffHz:   cfg.cutoffHz,
		resonance:  cfg.resonance,
		gainDB:     cfg.gainDB,
	}
	if err := f.rebuild(); err != nil {
		return nil, err
	}
	return f, nil
}

// SampleRate returns sample rate in Hz.
func (f *Filter) SampleRate() float64 { return f.sampleRate }

// CutoffHz returns cutoff in Hz.
func (f *Filter) CutoffHz() float64 { return f.cutoffHz }

// Resonance returns the feedback amount.
func (f *Filter) Resonance() float64 { return f.resonance }

// GainDB returns the input gain in dB.
func (f *Filter) GainDB() float64 { return f.gainDB }

// SetCutoffHz updates cutoff and keeps the stage state.
func (f *Filter) SetCutoffHz(cutoffHz float64) error {
	return f.SetCutoffAndResonance(cutoffHz, f.resonance)
}

// SetResonance updates the feedback amount and keeps the stage state.
func (f *Filter) SetResonance(resonance float64) error {
	return f.SetCutoffAndResonance(f.cutoffHz, resonance)
}

// SetCutoffAndResonance updates both coefficients with one matrix rebuild.
// On error the filter is unchanged.
func (f *Filter) SetCutoffAndResonance(cutoffHz, resonance float64) error {
	prevCutoff, prevRes := f.cutoffHz, f.resonance
	f.cutoffHz, f.resonance = cutoffHz, resonance
	if err := f.rebuild(); err != nil {
		f.cutoffHz, f.resonance = prevCutoff, prevRes
		return err
	}
	return nil
}

// SetGainDB updates input gain.
func (f *Filter) SetGainDB(db float64) error {
	if err := validateFiniteRange(db, -maxGainDB, maxGainDB, "gain"); err != nil {
		return err
	}
	f.gainDB = db
	f.gain = core.DBToLinear(db)
	return nil
}

// Reset clears the stage state.
func (f *Filter) Reset() {
	f.y = [4]float64{}
}

// State returns a copy of the stage state.
func (f *Filter) State() State {
	return State{Stage: f.y}
}

// SetState restores stage state. Non-finite values are rejected.
func (f *Filter) SetState(s State) error {
	for i, v := range s.Stage {
		if !isFinite(v) {
			return fmt.Errorf("moog: stage %d must be finite: %v", i, v)
		}
	}
	f.y = s.Stage
	return nil
}

// ProcessSample filters one sample.
func (f *Filter) ProcessSample(input float64) float64 {
	drive := math.Tanh(f.gain*input - f.resonance*f.y[3])

	var t [4]float64
	for i := range t {
		t[i] = math.Tanh(f.y[i])
	}

	var next [4]float64
	for i := range next {
		acc := f.b[i] * drive
		for j := range t {
			acc += f.c[i][j] * t[j]
		}
		next[i] = clipState(f.y[i] + acc)
	}
	f.y = next

	return f.y[3]
}

// ProcessInPlace filters buf in place.
func (f *Filter) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = f.ProcessSample(buf[i])
	}
}

// ProcessTo filters src into dst. The shorter length is processed.
func (f *Filter) ProcessTo(dst, src []float64) {
	n := min(len(dst), len(src))
	for i := range n {
		dst[i] = f.ProcessSample(src[i])
	}
}

type mat5 [5][5]float64

func (a *mat5) mul(b *mat5) mat5 {
	var out mat5
	for i := range 5 {
		for j := range 5 {
			var s float64
			for k := range 5 {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// rebuild derives the per-sample matrices. Row 0 of the transition matrix
// holds the input constant; rows 1-4 are the ladder stages with the
// feedback tap on stage 4.
func (f *Filter) rebuild() error {
	if err := validateFiniteRange(f.cutoffHz, minCutoffHz, math.Inf(1), "cutoff"); err != nil {
		return err
	}
	if err := validateFiniteRange(f.resonance, 0, maxResonance, "resonance"); err != nil {
		return err
	}
	nyquist := f.sampleRate * 0.5
	if f.cutoffHz >= nyquist {
		return fmt.Errorf("moog: cutoff must be < Nyquist (%f Hz): %f", nyquist, f.cutoffHz)
	}

	alpha := 2 * math.Pi * f.cutoffHz / f.sampleRate
	a := alpha / (1 << squarings)
	b := 1 - a
	k := f.resonance

	m := mat5{
		{1, 0, 0, 0, 0},
		{a, b, 0, 0, -k * a},
		{0, a, b, 0, 0},
		{0, 0, a, b, 0},
		{0, 0, 0, a, b},
	}
	for range squarings {
		m = m.mul(&m)
	}

	for i := range 4 {
		f.b[i] = m[1+i][0]
		for j := range 4 {
			f.c[i][j] = m[1+i][1+j]
		}
	}
	// c carries the increment, so the identity comes off the diagonal. The
	// feedback column is cancelled because ProcessSample feeds back through
	// the saturated input term instead.
	for i := range 4 {
		f.c[i][i] -= 1
		f.c[i][3] += k * f.b[i]
	}

	f.gain = core.DBToLinear(f.gainDB)
	return nil
}

// Stereo runs one ladder per channel.
type Stereo struct {
	left  *Filter
	right *Filter
}

// NewStereo constructs a stereo ladder with independent left/right state.
func NewStereo(sampleRate float64, opts ...Option) (*Stereo, error) {
	left, err := New(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	right, err := New(sampleRate, opts...)
	if err != nil {
		return nil, err
	}
	return &Stereo{left: left, right: right}, nil
}

// Left returns the left-channel filter.
func (s *Stereo) Left() *Filter { return s.left }

// Right returns the right-channel filter.
func (s *Stereo) Right() *Filter { return s.right }

// SetCutoffAndResonance updates both channels.
func (s *Stereo) SetCutoffAndResonance(cutoffHz, resonance float64) error {
	if err := s.left.SetCutoffAndResonance(cutoffHz, resonance); err != nil {
		return err
	}
	return s.right.SetCutoffAndResonance(cutoffHz, resonance)
}

// Reset clears both channels.
func (s *Stereo) Reset() {
	s.left.Reset()
	s.right.Reset()
}

// ProcessInPlace filters both channels in place. The shorter length is
// processed.
func (s *Stereo) ProcessInPlace(left, right []float64) {
	n := min(len(left), len(right))
	s.left.ProcessInPlace(left[:n])
	s.right.ProcessInPlace(right[:n])
}

func validateFiniteRange(value, min, max float64, name string) error {
	if !isFinite(value) {
		return fmt.Errorf("moog: %s must be finite: %v", name, value)
	}
	if value < min || value > max {
		return fmt.Errorf("moog: %s must be in [%g, %g]: %f", name, min, max, value)
	}
	return nil
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func clipState(v float64) float64 {
	if v > stateLimit {
		return stateLimit
	}
	if v < -stateLimit {
		return -stateLimit
	}
	return v
}
