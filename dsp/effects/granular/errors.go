package granular

import "errors"

var (
	// ErrBlockSize is returned by Process when a slice length differs from
	// the engine block size.
	ErrBlockSize = errors.New("granular: block length mismatch")
	// ErrUnknownParam is returned for a Param outside the control surface.
	ErrUnknownParam = errors.New("granular: unknown parameter")
	// ErrInvalidPreset is returned for a negative preset index.
	ErrInvalidPreset = errors.New("granular: invalid preset")
)
