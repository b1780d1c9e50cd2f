package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ElevenLabsConfig configures the hosted synthesis client.
type ElevenLabsConfig struct {
	APIKey  string
	VoiceID string
	ModelID string
	BaseURL string
	Timeout time.Duration
}

// ElevenLabs synthesizes speech through the ElevenLabs text-to-speech API,
// returning MP3 audio suitable for local playback.
type ElevenLabs struct {
	httpClient *http.Client
	apiKey     string
	voiceID    string
	modelID    string
	baseURL    string
}

// NewElevenLabs creates a synthesis client. A missing API key is not an
// error; Synthesize reports ErrUnavailable so callers can fall back.
func NewElevenLabs(cfg ElevenLabsConfig) *ElevenLabs {
	voiceID := cfg.VoiceID
	if voiceID == "" {
		// "Rachel", the ElevenLabs default voice.
		voiceID = "21m00Tcm4TlvDq8ikWAM"
	}

	modelID := cfg.ModelID
	if modelID == "" {
		modelID = "eleven_multilingual_v2"
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.elevenlabs.io"
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	return &ElevenLabs{
		apiKey:  cfg.APIKey,
		voiceID: voiceID,
		modelID: modelID,
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Synthesize requests MP3 audio for text.
func (c *ElevenLabs) Synthesize(ctx context.Context, text string) ([]byte, error) {
	if c.apiKey == "" {
		return nil, ErrUnavailable
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("nothing to synthesize")
	}

	endpoint, err := url.Parse(fmt.Sprintf("%s/v1/text-to-speech/%s", c.baseURL, c.voiceID))
	if err != nil {
		return nil, fmt.Errorf("invalid synthesis endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("output_format", "mp3_44100_128")
	endpoint.RawQuery = q.Encode()

	requestBody := map[string]any{
		"text":     text,
		"model_id": c.modelID,
		"voice_settings": map[string]float64{
			"stability":        0.75,
			"similarity_boost": 0.7,
		},
	}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "audio/mpeg")
	httpReq.Header.Set("xi-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("synthesis request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read synthesis response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ElevenLabs API error (status %d): %s", resp.StatusCode, string(body))
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("empty audio response")
	}

	return body, nil
}
