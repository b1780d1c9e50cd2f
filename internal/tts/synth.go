// Package tts turns reply text into audible speech: hosted synthesis with
// local playback, falling back to local synthesis, falling back to print.
package tts

import (
	"context"
	"errors"
)

// ErrUnavailable indicates no synthesis backend is configured. Callers fall
// through to the next tier rather than treating this as a failure.
var ErrUnavailable = errors.New("speech synthesis unavailable")

// Synthesizer converts text to encoded audio.
type Synthesizer interface {
	// Synthesize returns MP3-encoded audio for text, or ErrUnavailable when
	// the backend is not configured.
	Synthesize(ctx context.Context, text string) ([]byte, error)
}
