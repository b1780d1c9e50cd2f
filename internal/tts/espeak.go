package tts

import (
	"context"
	"fmt"
	"os/exec"
	"sync"
)

// Espeak speaks text through a local espeak-ng (or espeak) subprocess. It is
// the offline fallback when hosted synthesis is unconfigured or failing.
type Espeak struct {
	binary string
	cmd    *exec.Cmd
	mu     sync.Mutex
}

// NewEspeak locates a usable espeak binary. A nil-safe zero Available result
// means the host has no local synthesis either.
func NewEspeak() *Espeak {
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return &Espeak{binary: path}
		}
	}
	return &Espeak{}
}

// Available reports whether a local synthesis binary was found.
func (e *Espeak) Available() bool {
	return e.binary != ""
}

// Say speaks text, blocking until the subprocess exits. onStarted fires once
// the process is running.
func (e *Espeak) Say(ctx context.Context, text string, onStarted func()) error {
	if e.binary == "" {
		return ErrUnavailable
	}

	cmd := exec.CommandContext(ctx, e.binary, text)

	e.mu.Lock()
	e.cmd = cmd
	e.mu.Unlock()

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", e.binary, err)
	}
	if onStarted != nil {
		onStarted()
	}

	err := cmd.Wait()

	e.mu.Lock()
	e.cmd = nil
	e.mu.Unlock()

	if err != nil && ctx.Err() == nil {
		return fmt.Errorf("%s failed: %w", e.binary, err)
	}
	return nil
}

// Stop kills any in-flight subprocess.
func (e *Espeak) Stop() {
	e.mu.Lock()
	cmd := e.cmd
	e.mu.Unlock()

	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}
