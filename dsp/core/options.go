package core

import "math"

// ProcessorConfig defines the block-processing settings shared by the engine
// and its hosts.
type ProcessorConfig struct {
	SampleRate float64
	BlockSize  int
	// MaxCaptureSeconds bounds the longest snippet a capture slot can hold.
	// Slots are pre-sized to this length so capture never allocates.
	MaxCaptureSeconds float64
}

// ProcessorOption mutates a ProcessorConfig.
type ProcessorOption func(*ProcessorConfig)

// DefaultProcessorConfig returns the stock settings:
// 48 kHz, 256-frame blocks, ten seconds of capture.
func DefaultProcessorConfig() ProcessorConfig {
	return ProcessorConfig{
		SampleRate:        48000,
		BlockSize:         256,
		MaxCaptureSeconds: 10,
	}
}

// WithSampleRate sets the processing sample rate.
func WithSampleRate(sampleRate float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if sampleRate > 0 && !math.IsInf(sampleRate, 0) {
			cfg.SampleRate = sampleRate
		}
	}
}

// WithBlockSize sets the processing block size in frames.
func WithBlockSize(blockSize int) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if blockSize > 0 {
			cfg.BlockSize = blockSize
		}
	}
}

// WithMaxCaptureSeconds sets the capture ceiling. Values outside (0, 60] are
// ignored.
func WithMaxCaptureSeconds(seconds float64) ProcessorOption {
	return func(cfg *ProcessorConfig) {
		if seconds > 0 && seconds <= 60 {
			cfg.MaxCaptureSeconds = seconds
		}
	}
}

// ApplyProcessorOptions applies zero or more options to the default config.
func ApplyProcessorOptions(opts ...ProcessorOption) ProcessorConfig {
	cfg := DefaultProcessorConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// SecondsToBlocks converts a duration to whole processing blocks, truncating
// toward zero.
func (c ProcessorConfig) SecondsToBlocks(seconds float64) int {
	if c.BlockSize <= 0 || seconds <= 0 {
		return 0
	}
	return int(seconds * c.SampleRate / float64(c.BlockSize))
}

// MaxCaptureBlocks is the slot capacity in blocks implied by MaxCaptureSeconds.
func (c ProcessorConfig) MaxCaptureBlocks() int {
	return 1 + c.SecondsToBlocks(c.MaxCaptureSeconds)
}
