// Package server exposes the ledger over HTTP: the voice-command API the
// chat UI talks to, plus a websocket voice session that bridges streamed
// audio into the conversation controller.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/Veraticus/ledgervox/internal/engine"
	"github.com/Veraticus/ledgervox/internal/service"
	"github.com/Veraticus/ledgervox/internal/tts"
	"github.com/Veraticus/ledgervox/internal/voice"
)

// StreamRecognizer is a recognizer fed by audio pushed over a session
// socket rather than a local microphone.
type StreamRecognizer interface {
	voice.Recognizer
	WriteAudio(p []byte) error
}

// Config holds the HTTP server settings.
type Config struct {
	Addr            string
	AllowedOrigins  []string
	ShutdownTimeout time.Duration
}

// DefaultConfig returns settings for local development against the chat UI.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8787",
		AllowedOrigins:  []string{"http://localhost:3000", "http://localhost:5173"},
		ShutdownTimeout: 10 * time.Second,
	}
}

// Server wires the engine and storage into HTTP and websocket surfaces.
type Server struct {
	engine        *engine.Engine
	storage       service.Storage
	synth         tts.Synthesizer
	newRecognizer func() StreamRecognizer
	voiceCfg      voice.Config
	cfg           Config
}

// New creates a server. synth may be nil (sessions get text-only replies);
// newRecognizer may be nil, which disables the websocket voice session.
func New(eng *engine.Engine, storage service.Storage, synth tts.Synthesizer, newRecognizer func() StreamRecognizer, cfg Config) *Server {
	return &Server{
		engine:        eng,
		storage:       storage,
		synth:         synth,
		newRecognizer: newRecognizer,
		voiceCfg:      voice.DefaultConfig(),
		cfg:           cfg,
	}
}

// Router builds the gin handler tree.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	api := router.Group("/api")
	{
		api.GET("/health", s.handleHealth)
		api.POST("/voice-command", s.handleVoiceCommand)
		api.POST("/expense-natural", s.handleNaturalExpense)
		api.GET("/expenses/:userId", s.handleGetExpenses)
		api.DELETE("/expenses/:userId", s.handleClearExpenses)
		api.GET("/chat/:userId", s.handleGetChat)
		api.GET("/voice/:userId", s.handleVoiceSession)
	}

	return router
}

// Run serves until ctx is canceled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http server listening", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}
	return nil
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("http request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start))
	}
}
