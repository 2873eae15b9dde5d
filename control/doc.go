// Package control carries host and MIDI control into a granular engine.
//
// The engine's control surface is not safe for concurrent use, so changes
// produced on other goroutines (UI, MIDI input) are queued with Queue and
// applied by the audio thread between blocks. Mapper translates MIDI
// messages into queued changes and renders status feedback for pad
// controllers; Automation replays a Standard MIDI File block by block.
package control
