// Package stt provides speech-to-text recognizers for the voice pipeline.
package stt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/Veraticus/ledgervox/internal/voice"
)

// DeepgramConfig configures the streaming recognizer.
type DeepgramConfig struct {
	APIKey     string
	Endpoint   string
	Model      string
	Encoding   string
	Language   string
	SampleRate int
}

// DefaultDeepgramConfig returns settings for 16kHz linear PCM, which is what
// the websocket voice session streams.
func DefaultDeepgramConfig(apiKey string) DeepgramConfig {
	return DeepgramConfig{
		APIKey:     apiKey,
		Endpoint:   "wss://api.deepgram.com/v1/listen",
		Model:      "nova-2",
		Encoding:   "linear16",
		SampleRate: 16000,
		Language:   "en-US",
	}
}

// Deepgram is a streaming recognizer over the Deepgram listen websocket. It
// implements voice.Recognizer; audio is pushed in by the caller through
// WriteAudio. Partial results are delivered as a running transcript that
// grows as segments finalize.
type Deepgram struct {
	conn      *websocket.Conn
	cfg       DeepgramConfig
	committed []string
	writeMu   sync.Mutex
	mu        sync.Mutex
	open      bool
}

// transcriptionResult is the subset of Deepgram's response we consume.
type transcriptionResult struct {
	Channel struct {
		Alternatives []struct {
			Transcript string `json:"transcript"`
		} `json:"alternatives"`
	} `json:"channel"`
	IsFinal bool `json:"is_final"`
}

// NewDeepgram creates a recognizer. A single recognizer handles one
// recognition session at a time; Start after Stop opens a fresh stream.
func NewDeepgram(cfg DeepgramConfig) *Deepgram {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "wss://api.deepgram.com/v1/listen"
	}
	if cfg.Model == "" {
		cfg.Model = "nova-2"
	}
	return &Deepgram{cfg: cfg}
}

// Start dials the listen stream and begins delivering transcripts. Without an
// API key the capability is absent, not failed.
func (d *Deepgram) Start(ctx context.Context, onPartial func(string), onEnd func()) error {
	if d.cfg.APIKey == "" {
		return voice.ErrUnsupported
	}

	d.mu.Lock()
	if d.open {
		d.mu.Unlock()
		return nil
	}
	d.mu.Unlock()

	endpoint, err := d.streamURL()
	if err != nil {
		return err
	}

	header := http.Header{
		"Authorization": {fmt.Sprintf("Token %s", d.cfg.APIKey)},
	}
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("failed to dial deepgram (status %d): %w", resp.StatusCode, err)
		}
		return fmt.Errorf("failed to dial deepgram: %w", err)
	}

	d.mu.Lock()
	d.conn = conn
	d.open = true
	d.committed = nil
	d.mu.Unlock()

	go d.readLoop(conn, onPartial, onEnd)

	return nil
}

// WriteAudio pushes a chunk of raw audio into the stream. Empty chunks are
// ignored.
func (d *Deepgram) WriteAudio(p []byte) error {
	if len(p) == 0 {
		return nil
	}

	d.mu.Lock()
	conn := d.conn
	open := d.open
	d.mu.Unlock()
	if !open || conn == nil {
		return fmt.Errorf("recognition stream is not open")
	}

	d.writeMu.Lock()
	defer d.writeMu.Unlock()
	if err := conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		return fmt.Errorf("failed to write audio: %w", err)
	}
	return nil
}

// Stop closes the stream. The read loop observes the close and fires onEnd.
func (d *Deepgram) Stop() {
	d.mu.Lock()
	conn := d.conn
	open := d.open
	d.open = false
	d.conn = nil
	d.mu.Unlock()

	if !open || conn == nil {
		return
	}

	d.writeMu.Lock()
	// Ask Deepgram to flush any buffered audio before the socket drops.
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"CloseStream"}`)); err != nil {
		slog.Debug("failed to send close stream", "error", err)
	}
	d.writeMu.Unlock()

	if err := conn.Close(); err != nil {
		slog.Debug("failed to close deepgram connection", "error", err)
	}
}

func (d *Deepgram) readLoop(conn *websocket.Conn, onPartial func(string), onEnd func()) {
	defer onEnd()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			d.mu.Lock()
			open := d.open && d.conn == conn
			d.mu.Unlock()
			if open {
				slog.Warn("deepgram stream closed", "error", err)
			}
			return
		}

		var result transcriptionResult
		if err := json.Unmarshal(message, &result); err != nil {
			slog.Debug("skipping unparseable deepgram message", "error", err)
			continue
		}
		if len(result.Channel.Alternatives) == 0 {
			continue
		}
		text := strings.TrimSpace(result.Channel.Alternatives[0].Transcript)
		if text == "" {
			continue
		}

		onPartial(d.accumulate(text, result.IsFinal))
	}
}

// accumulate folds a segment into the running transcript: finalized segments
// are committed, interim ones are appended for display but replaced by the
// next result.
func (d *Deepgram) accumulate(text string, final bool) string {
	d.mu.Lock()
	defer d.mu.Unlock()

	if final {
		d.committed = append(d.committed, text)
		return strings.Join(d.committed, " ")
	}
	if len(d.committed) == 0 {
		return text
	}
	return strings.Join(d.committed, " ") + " " + text
}

func (d *Deepgram) streamURL() (string, error) {
	base, err := url.Parse(d.cfg.Endpoint)
	if err != nil {
		return "", fmt.Errorf("invalid deepgram endpoint: %w", err)
	}

	q := base.Query()
	q.Set("model", d.cfg.Model)
	if d.cfg.Encoding != "" {
		q.Set("encoding", d.cfg.Encoding)
	}
	if d.cfg.SampleRate > 0 {
		q.Set("sample_rate", strconv.Itoa(d.cfg.SampleRate))
		q.Set("channels", "1")
	}
	if d.cfg.Language != "" {
		q.Set("language", d.cfg.Language)
	}
	q.Set("punctuate", "true")
	q.Set("smart_format", "true")
	q.Set("interim_results", "true")
	base.RawQuery = q.Encode()

	return base.String(), nil
}
