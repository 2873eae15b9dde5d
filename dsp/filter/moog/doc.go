// Package moog provides a nonlinear four-pole Moog ladder low-pass filter
// discretised with the matrix method of Raph Levien, "A matrix approach to
// the Moog ladder filter" (2013).
//
// The linear part of the ladder ODE, including the held input, is
// integrated exactly over one sample by repeated squaring of a small-step
// transition matrix. The tanh nonlinearities are applied to the input
// difference and to every stage once per sample, so the filter saturates
// smoothly under drive and stays stable up to Nyquist.
//
// Filter is mono; Stereo runs two independent filters and satisfies the
// granular engine's post-filter interface.
package moog
