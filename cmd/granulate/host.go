package main

import (
	"context"
	"log/slog"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	midi "gitlab.com/gomidi/midi/v2"
	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-granular/control"
	"github.com/cwbudde/algo-granular/dsp/buffer"
	"github.com/cwbudde/algo-granular/dsp/core"
	"github.com/cwbudde/algo-granular/dsp/diag"
	"github.com/cwbudde/algo-granular/dsp/effects/granular"
	"github.com/cwbudde/algo-granular/dsp/filter/moog"
)

// scriptedRequest is a remote request submitted before a given block.
type scriptedRequest struct {
	block uint64
	req   granular.Request
}

func parseRequest(s string) (scriptedRequest, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return scriptedRequest{}, errors.Errorf("request %q: want block:command:slot", s)
	}
	block, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return scriptedRequest{}, errors.Wrapf(err, "request %q: block", s)
	}
	cmd, err := granular.ParseCommand(parts[1])
	if err != nil {
		return scriptedRequest{}, errors.Wrapf(err, "request %q", s)
	}
	slot, err := strconv.Atoi(parts[2])
	if err != nil {
		return scriptedRequest{}, errors.Wrapf(err, "request %q: slot", s)
	}
	if slot < 0 || slot >= granular.NumSlots {
		return scriptedRequest{}, errors.Errorf("request %q: slot must be in [0, %d]", s, granular.NumSlots-1)
	}
	return scriptedRequest{block: block, req: granular.Request{Command: cmd, Slot: slot}}, nil
}

func parseRequests(list []string) ([]scriptedRequest, error) {
	out := make([]scriptedRequest, 0, len(list))
	for _, s := range list {
		r, err := parseRequest(s)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	slices.SortStableFunc(out, func(a, b scriptedRequest) int {
		switch {
		case a.block < b.block:
			return -1
		case a.block > b.block:
			return 1
		default:
			return 0
		}
	})
	return out, nil
}

func parseSetting(s string) (granular.Param, uint8, error) {
	name, value, ok := strings.Cut(s, "=")
	if !ok {
		return 0, 0, errors.Errorf("setting %q: want name=value", s)
	}
	p, err := granular.ParseParam(name)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "setting %q", s)
	}
	v, err := strconv.ParseUint(strings.TrimSpace(value), 10, 8)
	if err != nil {
		return 0, 0, errors.Wrapf(err, "setting %q", s)
	}
	return p, uint8(v), nil
}

// host drives an engine block by block and feeds it control changes
// between blocks.
type host struct {
	eng      *granular.Engine
	queue    *control.Queue
	mapper   *control.Mapper
	auto     *control.Automation
	script   []scriptedRequest
	next     int
	feedback *feedbackRecorder
	logger   *slog.Logger
}

// applyControl delivers everything due before the engine's next block.
func (h *host) applyControl() {
	block := h.eng.Blocks()
	if h.auto != nil {
		h.auto.Due(block, h.eng.SampleRate(), h.eng.BlockSize(), func(msg midi.Message) {
			if !h.mapper.Handle(msg) {
				h.logger.Debug("midi message ignored", "block", block, "msg", msg.String())
			}
		})
	}
	for h.next < len(h.script) && h.script[h.next].block <= block {
		if !h.queue.Submit(h.script[h.next].req) {
			h.logger.Warn("control queue full", "block", block, "request", h.script[h.next].req.String())
		}
		h.next++
	}
	if _, err := h.queue.Apply(h.eng); err != nil {
		h.logger.Warn("control change rejected", "block", block, "err", err)
	}
}

// render processes the input plus tailBlocks of silence.
func (h *host) render(ctx context.Context, inL, inR []float64, tailBlocks int) (outL, outR []float64, err error) {
	bs := h.eng.BlockSize()
	blocks := (len(inL)+bs-1)/bs + tailBlocks
	outL = make([]float64, 0, blocks*bs)
	outR = make([]float64, 0, blocks*bs)

	pool := buffer.NewPool(bs)
	in := pool.Get()
	defer pool.Put(in)
	out := pool.Get()
	defer pool.Put(out)

	blockL, blockR := in.Left.Samples(), in.Right.Samples()
	for b := range blocks {
		if b%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, nil, err
			}
		}

		start := min(b*bs, len(inL))
		end := min(start+bs, len(inL))
		n := copy(blockL, inL[start:end])
		core.Zero(blockL[n:])
		n = copy(blockR, inR[start:end])
		core.Zero(blockR[n:])

		h.applyControl()
		if err := h.eng.Process(blockL, blockR, out.Left.Samples(), out.Right.Samples()); err != nil {
			return nil, nil, errors.Wrapf(err, "block %d", b)
		}
		if h.feedback != nil {
			h.feedback.observe(control.BlockMicros(h.eng.Blocks(), h.eng.SampleRate(), bs), h.eng.Status(), h.eng.RepeatStatus())
		}

		outL = append(outL, out.Left.Samples()...)
		outR = append(outR, out.Right.Samples()...)
	}
	return outL, outR, nil
}

func newEngine(opts options, sampleRate float64, observer granular.Observer) (*granular.Engine, error) {
	clip, err := granular.ParseClipPolicy(opts.clip)
	if err != nil {
		return nil, errors.Wrap(err, "clip policy")
	}

	proc := core.ApplyProcessorOptions(
		core.WithSampleRate(sampleRate),
		core.WithBlockSize(opts.blockSize),
		core.WithMaxCaptureSeconds(opts.maxCapture),
	)
	engOpts := []granular.Option{
		granular.WithProcessorConfig(proc),
		granular.WithSeed(opts.seed),
		granular.WithInsertion(opts.insertion),
		granular.WithObserver(observer),
		granular.WithClipPolicy(clip),
		granular.WithPreset(opts.preset),
	}
	if opts.lpf > 0 {
		lpf, err := moog.NewStereo(sampleRate, moog.WithCutoffHz(opts.lpf), moog.WithResonance(opts.resonance))
		if err != nil {
			return nil, errors.Wrap(err, "post lowpass")
		}
		engOpts = append(engOpts, granular.WithPostFilter(lpf))
	}

	eng, err := granular.New(engOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "engine")
	}
	for _, s := range opts.sets {
		p, v, err := parseSetting(s)
		if err != nil {
			return nil, err
		}
		if err := eng.SetParam(p, v); err != nil {
			return nil, errors.Wrapf(err, "setting %q", s)
		}
	}
	return eng, nil
}

func midiChannel(ch int) uint8 {
	if ch < 0 || ch > 15 {
		return control.OmniChannel
	}
	return uint8(ch)
}

func run(ctx context.Context, opts options, logger *slog.Logger) error {
	track, err := readWAV(opts.in)
	if err != nil {
		return err
	}
	logger.Info("input loaded",
		"path", opts.in,
		"sampleRate", track.sampleRate,
		"channels", track.channels,
		"frames", len(track.left),
	)

	script, err := parseRequests(opts.requests)
	if err != nil {
		return err
	}

	ring := diag.NewRing(opts.ringSize)
	metrics := &diag.Metrics{}
	eng, err := newEngine(opts, float64(track.sampleRate), diag.Tee{ring, metrics})
	if err != nil {
		return err
	}

	queue := control.NewQueue(0)
	h := &host{
		eng:    eng,
		queue:  queue,
		mapper: control.NewMapper(midiChannel(opts.channel), queue),
		script: script,
		logger: logger,
	}
	if opts.automation != "" {
		h.auto, err = control.LoadSMF(opts.automation)
		if err != nil {
			return errors.Wrap(err, "automation")
		}
		logger.Info("automation loaded", "path", opts.automation, "messages", h.auto.Len())
	}
	if opts.feedback != "" {
		h.feedback = newFeedbackRecorder(h.mapper)
	}

	tailBlocks := int(math.Ceil(opts.tail * float64(track.sampleRate) / float64(eng.BlockSize())))

	renderCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(renderCtx)

	g.Go(func() error {
		err := ring.Drain(gctx, logger)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	var outL, outR []float64
	g.Go(func() error {
		defer cancel()
		var err error
		outL, outR, err = h.render(gctx, track.left, track.right, tailBlocks)
		return err
	})

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "render")
	}

	snap := metrics.Snapshot()
	logger.Info("render finished",
		"blocks", eng.Blocks(),
		"captures", snap.Captures,
		"grains", snap.GrainsLaunched,
		"dropped", snap.LaunchesDropped,
		"clipped", snap.ClippedBlocks,
		"maxPeak", snap.MaxClipPeak,
		"queueDropped", queue.Dropped(),
	)

	if opts.out != "" {
		if err := writeWAV(opts.out, outL, outR, track.sampleRate, opts.bitDepth); err != nil {
			return err
		}
		logger.Info("output written", "path", opts.out, "frames", len(outL))
	}
	if h.feedback != nil {
		if err := h.feedback.writeSMF(opts.feedback); err != nil {
			return err
		}
		logger.Info("feedback written", "path", opts.feedback, "messages", h.feedback.len())
	}
	if opts.report {
		rep, err := analyze(outL, outR, float64(track.sampleRate), opts.reportWindow)
		if err != nil {
			return errors.Wrap(err, "report")
		}
		rep.print(os.Stdout)
	}
	if opts.play {
		if err := play(ctx, outL, outR, track.sampleRate); err != nil {
			return errors.Wrap(err, "playback")
		}
	}
	return nil
}
