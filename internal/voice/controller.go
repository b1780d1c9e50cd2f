package voice

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Responder produces the assistant's reply to a finalized utterance.
// Ambiguous input resolves to a clarifying reply, not an error; errors are
// reserved for transport and storage failures.
type Responder interface {
	Respond(ctx context.Context, text string) (string, error)
}

// ResponderFunc adapts a function to the Responder interface.
type ResponderFunc func(ctx context.Context, text string) (string, error)

// Respond implements Responder.
func (f ResponderFunc) Respond(ctx context.Context, text string) (string, error) {
	return f(ctx, text)
}

// Config holds the controller's timing parameters. The defaults match the
// feel of a natural conversation; tests shrink them.
type Config struct {
	SettleDelay        time.Duration
	ResumeDelay        time.Duration
	ErrorRecoveryDelay time.Duration
	SilenceWindow      time.Duration
}

// DefaultConfig returns the default timing configuration.
func DefaultConfig() Config {
	return Config{
		SettleDelay:        500 * time.Millisecond,
		ResumeDelay:        time.Second,
		ErrorRecoveryDelay: 2 * time.Second,
		SilenceWindow:      DefaultSilenceWindow,
	}
}

// Hooks are the controller's outward notifications to the hosting UI. All
// hooks are optional and are invoked without internal locks held.
type Hooks struct {
	OnPhaseChange      func(Phase)
	OnUserMessage      func(text string)
	OnAssistantMessage func(text string)
}

// Controller is the conversation state machine. It consumes finalized
// utterances, routes them through the responder, drives the speaker, and
// owns the session phase. Utterances are processed strictly one at a time:
// anything finalized while a turn is in flight is dropped, not queued.
type Controller struct {
	capture   *Capture
	speaker   Speaker
	responder Responder
	ctx       context.Context
	hooks     Hooks
	cfg       Config
	phase     Phase
	errMsg    string
	lastSent  string
	mu        sync.Mutex
	active    bool
}

// NewController creates a conversation controller around a recognizer,
// speaker, and responder.
func NewController(recognizer Recognizer, speaker Speaker, responder Responder, cfg Config, hooks Hooks) *Controller {
	c := &Controller{
		speaker:   speaker,
		responder: responder,
		cfg:       cfg,
		hooks:     hooks,
		phase:     PhaseIdle,
	}
	c.capture = NewCapture(recognizer, cfg.SilenceWindow, c.handleUtterance)
	return c
}

// Phase returns the current conversation phase.
func (c *Controller) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Err returns the current error message, empty outside the error phase.
func (c *Controller) Err() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.errMsg
}

// Active reports whether a session is open.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Start opens a voice session: phase moves to listening immediately and
// capture begins after a short settle delay. Starting an active session is
// a no-op.
func (c *Controller) Start(ctx context.Context) {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.ctx = ctx
	c.errMsg = ""
	c.lastSent = ""
	fire := c.setPhase(PhaseListening)
	c.mu.Unlock()
	fire()

	time.AfterFunc(c.cfg.SettleDelay, func() {
		c.mu.Lock()
		active := c.active
		c.mu.Unlock()
		if !active {
			return
		}
		c.startCapture(ctx)
	})
}

// Stop ends the session unconditionally and synchronously: capture and
// playback halt, phase returns to idle, and any error clears. In-flight
// work is not drained; its results are discarded by the active-flag guard
// on every continuation.
func (c *Controller) Stop() {
	c.mu.Lock()
	c.active = false
	c.errMsg = ""
	fire := c.setPhase(PhaseIdle)
	c.mu.Unlock()

	c.capture.Stop()
	c.speaker.Stop()
	fire()
}

// handleUtterance is the capture callback. A finalized utterance is only
// acted on while listening in an active session; during thinking or
// speaking the in-flight request owns the turn and the utterance is
// deliberately dropped.
func (c *Controller) handleUtterance(u Utterance) {
	c.mu.Lock()
	if !c.active || c.phase == PhaseThinking || c.phase == PhaseSpeaking {
		c.mu.Unlock()
		return
	}
	if u.Text == c.lastSent {
		c.mu.Unlock()
		return
	}
	c.lastSent = u.Text
	fire := c.setPhase(PhaseThinking)
	ctx := c.ctx
	c.mu.Unlock()

	// Stop the microphone before any reply can play.
	c.capture.Stop()
	fire()

	if c.hooks.OnUserMessage != nil {
		c.hooks.OnUserMessage(u.Text)
	}

	go c.runTurn(ctx, u.Text)
}

// runTurn executes one thinking->speaking->idle cycle. Every step checks
// the active flag first so continuations of a stopped session are no-ops.
func (c *Controller) runTurn(ctx context.Context, text string) {
	reply, err := c.responder.Respond(ctx, text)

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if err != nil {
		c.fail(err)
		return
	}

	if c.hooks.OnAssistantMessage != nil {
		c.hooks.OnAssistantMessage(reply)
	}

	// Phase stays thinking through the whole synthesis round trip; it only
	// becomes speaking once audio is audible.
	speakErr := c.speaker.Speak(ctx, reply, c.onAudioStarted)

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if speakErr != nil {
		c.fail(speakErr)
		return
	}

	c.finishTurn()
}

// onAudioStarted fires when speech output becomes audible. If capture is
// somehow still running, it is stopped here: the assistant must never hear
// itself.
func (c *Controller) onAudioStarted() {
	if c.capture.Listening() {
		c.capture.Stop()
	}

	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	fire := c.setPhase(PhaseSpeaking)
	c.mu.Unlock()
	fire()
}

// finishTurn returns to idle and schedules the resume back into listening.
func (c *Controller) finishTurn() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	fire := c.setPhase(PhaseIdle)
	ctx := c.ctx
	c.mu.Unlock()
	fire()

	time.AfterFunc(c.cfg.ResumeDelay, func() {
		c.mu.Lock()
		if !c.active {
			c.mu.Unlock()
			return
		}
		// A fresh listening stint accepts a repeat of the previous command.
		c.lastSent = ""
		fire := c.setPhase(PhaseListening)
		c.mu.Unlock()
		fire()

		c.startCapture(ctx)
	})
}

// fail enters the error phase and schedules auto-recovery back into
// listening if the session is still active when the delay elapses.
func (c *Controller) fail(err error) {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.errMsg = err.Error()
	fire := c.setPhase(PhaseError)
	ctx := c.ctx
	c.mu.Unlock()
	fire()

	time.AfterFunc(c.cfg.ErrorRecoveryDelay, func() {
		c.mu.Lock()
		if !c.active {
			c.mu.Unlock()
			return
		}
		c.errMsg = ""
		c.lastSent = ""
		fire := c.setPhase(PhaseListening)
		c.mu.Unlock()
		fire()

		c.startCapture(ctx)
	})
}

// startCapture begins capture, treating a missing recognition capability as
// fatal to the session and anything else as a recoverable error.
func (c *Controller) startCapture(ctx context.Context) {
	err := c.capture.Start(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, ErrUnsupported) {
		c.mu.Lock()
		c.active = false
		c.errMsg = err.Error()
		fire := c.setPhase(PhaseError)
		c.mu.Unlock()
		fire()
		return
	}

	c.fail(err)
}

// setPhase updates the phase and returns the notification to run after the
// lock is released. Callers must hold mu.
func (c *Controller) setPhase(p Phase) func() {
	if c.phase == p {
		return func() {}
	}
	c.phase = p
	hook := c.hooks.OnPhaseChange
	if hook == nil {
		return func() {}
	}
	return func() { hook(p) }
}
