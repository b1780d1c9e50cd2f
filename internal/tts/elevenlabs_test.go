package tts

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElevenLabsWithoutKeyIsUnavailable(t *testing.T) {
	client := NewElevenLabs(ElevenLabsConfig{})

	_, err := client.Synthesize(context.Background(), "hello")
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestElevenLabsSynthesize(t *testing.T) {
	audio := []byte("mp3-bytes")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/text-to-speech/test-voice", r.URL.Path)
		assert.Equal(t, "mp3_44100_128", r.URL.Query().Get("output_format"))
		assert.Equal(t, "secret", r.Header.Get("xi-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		_, _ = w.Write(audio)
	}))
	defer server.Close()

	client := NewElevenLabs(ElevenLabsConfig{
		APIKey:  "secret",
		VoiceID: "test-voice",
		BaseURL: server.URL,
	})

	got, err := client.Synthesize(context.Background(), "I spent $5 on coffee")
	require.NoError(t, err)
	assert.Equal(t, audio, got)
}

func TestElevenLabsErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		client := NewElevenLabs(ElevenLabsConfig{APIKey: "secret"})
		_, err := client.Synthesize(context.Background(), "   ")
		require.Error(t, err)
	})

	t.Run("api error surfaces status and body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"detail":"bad key"}`))
		}))
		defer server.Close()

		client := NewElevenLabs(ElevenLabsConfig{APIKey: "wrong", BaseURL: server.URL})
		_, err := client.Synthesize(context.Background(), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 401")
		assert.Contains(t, err.Error(), "bad key")
	})

	t.Run("empty audio body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		defer server.Close()

		client := NewElevenLabs(ElevenLabsConfig{APIKey: "secret", BaseURL: server.URL})
		_, err := client.Synthesize(context.Background(), "hello")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "empty audio")
	})
}

func TestSpeakerPrintFallback(t *testing.T) {
	var out bytes.Buffer
	speaker := &Speaker{
		player: NewPlayer(),
		espeak: &Espeak{},
		out:    &out,
	}

	startedCount := 0
	err := speaker.Speak(context.Background(), "Added $5 to Food & Dining.", func() {
		startedCount++
	})
	require.NoError(t, err)
	assert.Equal(t, "Added $5 to Food & Dining.\n", out.String())
	assert.Equal(t, 1, startedCount)
}

func TestSpeakerUnavailableSynthFallsThrough(t *testing.T) {
	var out bytes.Buffer
	speaker := &Speaker{
		synth:  NewElevenLabs(ElevenLabsConfig{}),
		player: NewPlayer(),
		espeak: &Espeak{},
		out:    &out,
	}

	err := speaker.Speak(context.Background(), "hello", nil)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", out.String())
}
