package voice

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ErrUnsupported indicates the platform has no speech recognition
// capability. It is distinct from transient recognition failures.
var ErrUnsupported = errors.New("speech capture unavailable")

// DefaultSilenceWindow is how long recognition must stay quiet after the
// last partial result before the utterance is finalized.
const DefaultSilenceWindow = 2 * time.Second

// Recognizer is the platform speech-to-text capability. Start begins
// continuous recognition, pushing the running transcript through onPartial
// as it grows and calling onEnd exactly once when recognition stops, whether
// via Stop or on its own.
type Recognizer interface {
	Start(ctx context.Context, onPartial func(text string), onEnd func()) error
	Stop()
}

// Capture wraps continuous recognition into a stream of finalized
// utterances. An utterance is finalized after the silence window passes with
// no new partial results, and only if it differs from the last utterance
// actually sent.
type Capture struct {
	recognizer  Recognizer
	onUtterance func(Utterance)
	timer       *time.Timer
	transcript  string
	lastSent    string
	silence     time.Duration
	mu          sync.Mutex
	listening   bool
}

// NewCapture creates an utterance capture around a recognizer. onUtterance
// receives each finalized utterance; it is invoked without internal locks
// held and may call back into Capture.
func NewCapture(recognizer Recognizer, silence time.Duration, onUtterance func(Utterance)) *Capture {
	if silence <= 0 {
		silence = DefaultSilenceWindow
	}
	return &Capture{
		recognizer:  recognizer,
		silence:     silence,
		onUtterance: onUtterance,
	}
}

// Start opens continuous recognition. Restarting after Stop resets the
// accumulated transcript. Starting while already listening is a no-op.
func (c *Capture) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return nil
	}
	c.listening = true
	c.transcript = ""
	c.lastSent = ""
	c.mu.Unlock()

	if err := c.recognizer.Start(ctx, c.handlePartial, c.handleEnd); err != nil {
		c.mu.Lock()
		c.listening = false
		c.mu.Unlock()
		if errors.Is(err, ErrUnsupported) {
			return err
		}
		return fmt.Errorf("failed to start recognition: %w", err)
	}

	return nil
}

// Stop halts recognition and cancels any pending silence timer. It is
// idempotent and side-effect-free when already stopped.
func (c *Capture) Stop() {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return
	}
	c.listening = false
	c.lastSent = ""
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	c.recognizer.Stop()
}

// Listening reports whether capture is currently running.
func (c *Capture) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

// handlePartial records the running transcript and restarts the silence
// timer. Every new partial result pushes finalization out by the full
// silence window.
func (c *Capture) handlePartial(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.listening {
		return
	}

	c.transcript = text
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.silence, c.finalize)
}

// finalize emits the pending transcript as a finalized utterance, deduped
// against the last sent text.
func (c *Capture) finalize() {
	c.mu.Lock()
	emit, ok := c.takePending()
	c.mu.Unlock()

	if ok {
		c.onUtterance(emit)
	}
}

// handleEnd runs when recognition stops on its own, e.g. a platform
// timeout. Unreported text must still finalize exactly once before the
// stopped state is visible.
func (c *Capture) handleEnd() {
	c.mu.Lock()
	if !c.listening {
		c.mu.Unlock()
		return
	}
	emit, ok := c.takePending()
	c.listening = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if ok {
		c.onUtterance(emit)
	}
}

// takePending returns the current transcript as an utterance if it is
// non-empty and differs from the last sent text. Callers must hold mu.
func (c *Capture) takePending() (Utterance, bool) {
	if !c.listening {
		return Utterance{}, false
	}
	text := c.transcript
	if text == "" || text == c.lastSent {
		return Utterance{}, false
	}
	c.lastSent = text
	return Utterance{Text: text, FinalizedAt: time.Now()}, true
}
