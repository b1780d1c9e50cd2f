package tts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
)

// Speaker chains the output tiers into one voice.Speaker: hosted synthesis
// with local playback, then espeak, then plain text to the writer. The final
// tier cannot fail, so a reply is always delivered somehow.
type Speaker struct {
	synth  Synthesizer
	player *Player
	espeak *Espeak
	out    io.Writer
}

// NewSpeaker composes the output chain. synth may be nil to skip hosted
// synthesis entirely; out defaults to stdout.
func NewSpeaker(synth Synthesizer, out io.Writer) *Speaker {
	if out == nil {
		out = os.Stdout
	}
	return &Speaker{
		synth:  synth,
		player: NewPlayer(),
		espeak: NewEspeak(),
		out:    out,
	}
}

// Speak delivers text through the best available tier, blocking until
// delivery completes. onStarted fires exactly once, when output actually
// begins.
func (s *Speaker) Speak(ctx context.Context, text string, onStarted func()) error {
	var once sync.Once
	started := func() {
		if onStarted != nil {
			once.Do(onStarted)
		}
	}

	if s.synth != nil {
		audio, err := s.synth.Synthesize(ctx, text)
		switch {
		case err == nil:
			playErr := s.player.Play(ctx, audio, started)
			if playErr == nil {
				return nil
			}
			if ctx.Err() != nil {
				return playErr
			}
			slog.Warn("audio playback failed, falling back", "error", playErr)
		case errors.Is(err, ErrUnavailable):
			// Not configured; try the next tier quietly.
		default:
			if ctx.Err() != nil {
				return err
			}
			slog.Warn("speech synthesis failed, falling back", "error", err)
		}
	}

	if s.espeak.Available() {
		err := s.espeak.Say(ctx, text, started)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return err
		}
		slog.Warn("local synthesis failed, falling back", "error", err)
	}

	started()
	if _, err := fmt.Fprintln(s.out, text); err != nil {
		return fmt.Errorf("failed to write reply: %w", err)
	}
	return nil
}

// Stop halts playback and any synthesis subprocess.
func (s *Speaker) Stop() {
	s.player.Stop()
	s.espeak.Stop()
}
