package voice

import "context"

// Speaker converts text to audible speech. Implementations are best-effort:
// a reachable high-quality backend is preferred, with local synthesis as a
// fallback.
type Speaker interface {
	// Speak synthesizes and plays text, blocking until playback completes
	// or fails. onStarted fires exactly once per successful call, when
	// audio output actually begins rather than when synthesis is
	// requested; the Controller's thinking-to-speaking transition hangs on
	// that timing.
	Speak(ctx context.Context, text string, onStarted func()) error

	// Stop halts any in-flight playback and synthesis immediately. Safe to
	// call when idle.
	Stop()
}
