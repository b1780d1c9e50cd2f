package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledgervox/internal/server"
	"github.com/Veraticus/ledgervox/internal/stt"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the ledger API and websocket voice sessions",
		Long: `Start the HTTP server the chat UI talks to: the voice-command API,
expense and chat history endpoints, and a websocket endpoint that runs a
full voice conversation over streamed audio.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", ":8787", "listen address")
	cmd.Flags().StringSlice("origins", nil, "allowed CORS origins")
	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.origins", cmd.Flags().Lookup("origins"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	completer, err := createCompleter()
	if err != nil {
		return fmt.Errorf("failed to configure language model: %w", err)
	}
	if completer == nil {
		slog.Info("no language model configured, using deterministic fallbacks")
	}

	cfg := server.DefaultConfig()
	if addr := viper.GetString("server.addr"); addr != "" {
		cfg.Addr = addr
	}
	if origins := viper.GetStringSlice("server.origins"); len(origins) > 0 {
		cfg.AllowedOrigins = origins
	}

	var newRecognizer func() server.StreamRecognizer
	if apiKey := deepgramAPIKey(); apiKey != "" {
		newRecognizer = func() server.StreamRecognizer {
			return stt.NewDeepgram(stt.DefaultDeepgramConfig(apiKey))
		}
	} else {
		slog.Info("no speech recognition key configured, websocket voice sessions disabled")
	}

	srv := server.New(buildEngine(store, completer), store, createSynthesizer(), newRecognizer, cfg)
	return srv.Run(ctx)
}
