package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/ledgervox/internal/cli"
	"github.com/Veraticus/ledgervox/internal/stt"
	"github.com/Veraticus/ledgervox/internal/tts"
	"github.com/Veraticus/ledgervox/internal/voice"
)

func talkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "talk",
		Short: "Have a conversation with your ledger in the terminal",
		Long: `Run an interactive session: each line you type is treated as an
utterance. Replies are synthesized and played when a speech backend is
available, and always printed.`,
		RunE: runTalk,
	}

	cmd.Flags().String("user", "local", "user id whose ledger to talk to")
	_ = viper.BindPFlag("talk.user", cmd.Flags().Lookup("user"))

	return cmd
}

func runTalk(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	userID := viper.GetString("talk.user")

	store, err := openStorage(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	completer, err := createCompleter()
	if err != nil {
		return fmt.Errorf("failed to configure language model: %w", err)
	}

	eng := buildEngine(store, completer)
	responder := voice.ResponderFunc(func(ctx context.Context, text string) (string, error) {
		return eng.Process(ctx, userID, text).Message, nil
	})

	recognizer := &stdinRecognizer{
		LineReader: stt.NewLineReader(os.Stdin),
		done:       make(chan struct{}),
	}

	// Replies are printed by the hook below; the speaker only handles audio.
	speaker := tts.NewSpeaker(createSynthesizer(), io.Discard)

	cfg := voice.DefaultConfig()
	// Typed lines arrive whole, so the silence debounce can be short.
	cfg.SilenceWindow = 400 * time.Millisecond
	cfg.SettleDelay = 50 * time.Millisecond

	controller := voice.NewController(recognizer, speaker, responder, cfg, voice.Hooks{
		OnPhaseChange: func(p voice.Phase) {
			slog.Debug("phase changed", "phase", p)
		},
		OnAssistantMessage: func(text string) {
			fmt.Println(cli.FormatAssistant(text))
		},
	})

	fmt.Println(cli.FormatTitle("Talk to your ledger."))
	fmt.Println(cli.FormatHint("Try 'I spent $12.50 on lunch'. Ctrl-D to quit."))
	controller.Start(ctx)
	defer controller.Stop()

	select {
	case <-ctx.Done():
	case <-recognizer.done:
		// Give the final turn a chance to finish before tearing down.
		waitForListening(controller, 30*time.Second)
	}

	return nil
}

// stdinRecognizer signals when the input stream is exhausted so the command
// knows the session is over.
type stdinRecognizer struct {
	*stt.LineReader
	done chan struct{}
	once sync.Once
}

func (r *stdinRecognizer) Start(ctx context.Context, onPartial func(string), onEnd func()) error {
	return r.LineReader.Start(ctx, onPartial, func() {
		onEnd()
		r.once.Do(func() { close(r.done) })
	})
}

func waitForListening(c *voice.Controller, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if c.Phase() == voice.PhaseListening {
			return
		}
		time.Sleep(50 * time.Millisecond)
	}
}
