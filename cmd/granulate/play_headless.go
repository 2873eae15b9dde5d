//go:build headless

package main

import (
	"context"

	"github.com/pkg/errors"
)

func play(context.Context, []float64, []float64, int) error {
	return errors.New("playback is not available in headless builds")
}
