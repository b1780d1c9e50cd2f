package tts

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/speaker"
)

// Player plays MP3 audio through the system output device. The underlying
// speaker is initialized once, at the sample rate of the first clip; later
// clips are resampled to match.
type Player struct {
	initErr    error
	sampleRate beep.SampleRate
	initOnce   sync.Once
}

// NewPlayer creates a playback device. Initialization is deferred to the
// first Play so constructing a Player on a headless box is harmless.
func NewPlayer() *Player {
	return &Player{}
}

// Play decodes and plays one MP3 clip, blocking until playback completes,
// fails, or ctx is canceled. onStarted fires just before audio reaches the
// device.
func (p *Player) Play(ctx context.Context, audio []byte, onStarted func()) error {
	streamer, format, err := mp3.Decode(io.NopCloser(bytes.NewReader(audio)))
	if err != nil {
		return fmt.Errorf("failed to decode audio: %w", err)
	}
	defer func() { _ = streamer.Close() }()

	p.initOnce.Do(func() {
		p.sampleRate = format.SampleRate
		p.initErr = speaker.Init(format.SampleRate, format.SampleRate.N(time.Second/10))
	})
	if p.initErr != nil {
		return fmt.Errorf("failed to open audio device: %w", p.initErr)
	}

	var stream beep.Streamer = streamer
	if format.SampleRate != p.sampleRate {
		stream = beep.Resample(4, format.SampleRate, p.sampleRate, streamer)
	}

	done := make(chan struct{})
	if onStarted != nil {
		onStarted()
	}
	speaker.Play(beep.Seq(stream, beep.Callback(func() {
		close(done)
	})))

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		speaker.Clear()
		return ctx.Err()
	}
}

// Stop halts whatever is currently playing.
func (p *Player) Stop() {
	speaker.Clear()
}
