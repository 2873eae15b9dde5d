package granular

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	vecmath "github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-granular/dsp/buffer"
	"github.com/cwbudde/algo-granular/dsp/core"
)

const defaultSeed = 1

// Filter is a stereo in-place block processor applied to the wet signal
// before the output volume.
type Filter interface {
	ProcessInPlace(left, right []float64)
}

// Option mutates engine construction parameters.
type Option func(*config) error

type config struct {
	proc      core.ProcessorConfig
	seed      int64
	insertion bool
	observer  Observer
	clip      ClipPolicy
	filter    Filter
	preset    int
}

func defaultConfig() config {
	return config{
		proc: core.DefaultProcessorConfig(),
		seed: defaultSeed,
		clip: ClipNone,
	}
}

// WithProcessorConfig sets sample rate, block size and capture ceiling.
func WithProcessorConfig(proc core.ProcessorConfig) Option {
	return func(cfg *config) error {
		if proc.SampleRate <= 0 {
			return fmt.Errorf("granular: sample rate must be > 0: %f", proc.SampleRate)
		}
		if proc.BlockSize <= 0 {
			return fmt.Errorf("granular: block size must be > 0: %d", proc.BlockSize)
		}
		if proc.MaxCaptureSeconds <= 0 {
			return fmt.Errorf("granular: max capture seconds must be > 0: %f", proc.MaxCaptureSeconds)
		}
		cfg.proc = proc
		return nil
	}
}

// WithSeed seeds the random direction policy.
func WithSeed(seed int64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		return nil
	}
}

// WithInsertion runs the engine as an insertion effect: the volume byte
// crossfades dry and wet instead of scaling a wet-only send.
func WithInsertion(insertion bool) Option {
	return func(cfg *config) error {
		cfg.insertion = insertion
		return nil
	}
}

// WithObserver installs a diagnostics hook called synchronously from Process.
func WithObserver(obs Observer) Option {
	return func(cfg *config) error {
		cfg.observer = obs
		return nil
	}
}

// WithClipPolicy sets how samples beyond full scale are handled.
func WithClipPolicy(p ClipPolicy) Option {
	return func(cfg *config) error {
		if p > ClipSoft {
			return fmt.Errorf("granular: unknown clip policy: %d", p)
		}
		cfg.clip = p
		return nil
	}
}

// WithPostFilter installs a filter on the wet signal.
func WithPostFilter(f Filter) Option {
	return func(cfg *config) error {
		cfg.filter = f
		return nil
	}
}

// WithPreset selects the preset loaded at construction.
func WithPreset(n int) Option {
	return func(cfg *config) error {
		if n < 0 {
			return fmt.Errorf("%w: %d", ErrInvalidPreset, n)
		}
		cfg.preset = n
		return nil
	}
}

// Engine is the stereo granular repeat processor. All storage is allocated
// by New; Process does not allocate.
type Engine struct {
	proc             core.ProcessorConfig
	blockSize        int
	maxCaptureBlocks int
	insertion        bool
	observer         Observer
	clip             ClipPolicy
	filter           Filter
	seed             int64
	rng              *rand.Rand
	preset           int

	// control surface and derived values
	params        [NumParams]uint8
	dryGain       float64
	wetGain       float64
	panL, panR    float64
	program       Program
	trigLevel     float64
	captureBlocks int
	repeatTime    int
	repeatCount   int
	repeatBlocks  int
	mode          Mode
	crossover     float64
	fadeLimit     int

	slots        [NumSlots]slot
	grains       [MaxGrains]grain
	nextGrain    int
	activeGrains int

	crossToggle   bool
	reverseToggle bool

	env         envelope
	trigger     TriggerState
	nextSlot    int
	captureSlot int
	lastCapture int

	request      atomic.Uint32
	status       atomic.Uint32
	repeatStatus atomic.Uint32
	repeatBits   uint32

	blocks uint64

	scratch    []float64
	revL, revR []float64
	wetL, wetR []float64
}

// New creates an engine with preset 0 loaded, or the preset chosen by
// WithPreset.
func New(opts ...Option) (*Engine, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	bs := cfg.proc.BlockSize
	e := &Engine{
		proc:             cfg.proc,
		blockSize:        bs,
		maxCaptureBlocks: cfg.proc.MaxCaptureBlocks(),
		insertion:        cfg.insertion,
		observer:         cfg.observer,
		clip:             cfg.clip,
		filter:           cfg.filter,
		seed:             cfg.seed,
		rng:              rand.New(rand.NewSource(cfg.seed)),
		fadeLimit:        defaultFadeLimit,
		scratch:          make([]float64, bs),
		revL:             make([]float64, bs),
		revR:             make([]float64, bs),
		wetL:             make([]float64, bs),
		wetR:             make([]float64, bs),
	}
	for i := range e.slots {
		e.slots[i].data = buffer.NewStereo(bs, e.maxCaptureBlocks)
	}
	e.resetState()

	if err := e.ApplyPreset(cfg.preset); err != nil {
		return nil, err
	}

	return e, nil
}

// SampleRate returns the configured sample rate in Hz.
func (e *Engine) SampleRate() float64 { return e.proc.SampleRate }

// BlockSize returns the number of frames per Process call.
func (e *Engine) BlockSize() int { return e.blockSize }

// MaxCaptureBlocks returns the slot capacity in blocks.
func (e *Engine) MaxCaptureBlocks() int { return e.maxCaptureBlocks }

// Blocks returns the number of blocks processed since construction or Reset.
func (e *Engine) Blocks() uint64 { return e.blocks }

// Insertion reports whether the engine runs as an insertion effect.
func (e *Engine) Insertion() bool { return e.insertion }

// Reset frees every slot and grain and clears the trigger and status state.
// The control surface is kept.
func (e *Engine) Reset() {
	e.resetState()
	e.rng.Seed(e.seed)
}

func (e *Engine) resetState() {
	for i := range e.grains {
		e.grains[i] = grain{}
	}
	for i := range e.slots {
		data := e.slots[i].data
		data.Zero()
		data.SetBlocks(0)
		e.slots[i] = slot{data: data}
	}
	e.nextGrain = 0
	e.activeGrains = 0
	e.crossToggle = false
	e.reverseToggle = false

	e.env.reset()
	e.trigger = TriggerIdle
	e.nextSlot = 0
	e.captureSlot = 0
	// the first remote next-free request lands on slot 0
	e.lastCapture = NumSlots - 1

	e.request.Store(0)
	e.repeatBits = 0
	e.status.Store(0)
	e.repeatStatus.Store(0)
	e.blocks = 0
}

// Process runs one block. All four slices must hold exactly BlockSize
// frames; output may alias input.
func (e *Engine) Process(inL, inR, outL, outR []float64) error {
	bs := e.blockSize
	if len(inL) != bs || len(inR) != bs || len(outL) != bs || len(outR) != bs {
		return fmt.Errorf("%w: got %d/%d/%d/%d frames, want %d",
			ErrBlockSize, len(inL), len(inR), len(outL), len(outR), bs)
	}

	if e.mode.RemoteOnly {
		e.remoteMode(inL, inR)
	} else {
		e.localMode(inL, inR)
	}

	e.launchRepeats()
	e.renderGrains()

	if e.filter != nil {
		e.filter.ProcessInPlace(e.wetL, e.wetR)
	}

	e.mix(inL, outL, e.wetL)
	e.mix(inR, outR, e.wetR)
	e.applyClip(outL, outR)

	e.publishStatus()
	e.blocks++

	return nil
}

// ProcessInPlace runs one block, replacing left and right with the output.
func (e *Engine) ProcessInPlace(left, right []float64) error {
	return e.Process(left, right, left, right)
}

func (e *Engine) mix(in, out, wet []float64) {
	vecmath.ScaleBlockInPlace(wet, e.wetGain)
	if e.dryGain == 0 {
		copy(out, wet)
		return
	}
	vecmath.ScaleBlock(out, in, e.dryGain)
	vecmath.AddBlockInPlace(out, wet)
}
