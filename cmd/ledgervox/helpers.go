package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/Veraticus/ledgervox/internal/engine"
	"github.com/Veraticus/ledgervox/internal/llm"
	"github.com/Veraticus/ledgervox/internal/nlu"
	"github.com/Veraticus/ledgervox/internal/storage"
	"github.com/Veraticus/ledgervox/internal/tts"
)

// openStorage opens the configured database and brings the schema up to
// date. Callers own the returned store and must close it.
func openStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	dbPath := viper.GetString("database.path")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		dbPath = filepath.Join(home, ".local", "share", "ledgervox", "ledgervox.db")
	}

	store, err := storage.NewSQLiteStorage(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return store, nil
}

// createCompleter builds the language model client from configuration. A
// blank provider is a valid setup: every consumer falls back to its
// deterministic path.
func createCompleter() (llm.Completer, error) {
	provider := viper.GetString("llm.provider")

	config := llm.Config{
		Provider:    provider,
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
		RateLimit:   viper.GetInt("llm.rate_limit"),
		Timeout:     viper.GetDuration("llm.timeout"),
	}

	switch provider {
	case "openai":
		config.APIKey = viper.GetString("llm.openai_api_key")
		if config.APIKey == "" {
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		}
	case "anthropic":
		config.APIKey = viper.GetString("llm.anthropic_api_key")
		if config.APIKey == "" {
			config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	return llm.NewCompleter(config)
}

// buildEngine wires the NLU components and storage into the command
// pipeline.
func buildEngine(store *storage.SQLiteStorage, completer llm.Completer) *engine.Engine {
	return engine.New(store,
		nlu.NewClassifier(completer, nil),
		nlu.NewExtractor(completer, nil),
		nlu.NewResolver(completer, nil),
		nlu.NewAnswerer(completer, nil),
	)
}

// createSynthesizer builds the hosted speech backend, or nil when no key is
// configured.
func createSynthesizer() tts.Synthesizer {
	apiKey := viper.GetString("voice.elevenlabs_api_key")
	if apiKey == "" {
		apiKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if apiKey == "" {
		return nil
	}

	return tts.NewElevenLabs(tts.ElevenLabsConfig{
		APIKey:  apiKey,
		VoiceID: viper.GetString("voice.elevenlabs_voice_id"),
		ModelID: viper.GetString("voice.elevenlabs_model_id"),
	})
}

// deepgramAPIKey resolves the speech recognition key, empty when absent.
func deepgramAPIKey() string {
	apiKey := viper.GetString("voice.deepgram_api_key")
	if apiKey == "" {
		apiKey = os.Getenv("DEEPGRAM_API_KEY")
	}
	return apiKey
}
