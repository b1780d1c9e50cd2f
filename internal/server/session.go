package server

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/Veraticus/ledgervox/internal/tts"
	"github.com/Veraticus/ledgervox/internal/voice"
)

// sessionFrame is the wire format both directions of a voice session speak.
// Client to server: start, media (base64 audio), stop. Server to client:
// phase, transcript, reply, audio (base64), error.
type sessionFrame struct {
	Event   string `json:"event"`
	Payload string `json:"payload,omitempty"`
	Text    string `json:"text,omitempty"`
	Phase   string `json:"phase,omitempty"`
	Message string `json:"message,omitempty"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	// Browser access is governed by the CORS layer; the socket itself takes
	// any origin so native clients can connect too.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleVoiceSession runs one full-duplex voice conversation over a
// websocket. Audio streams in as media frames and is pushed into the
// recognizer; the controller's output streams back as phase, transcript,
// reply, and audio frames.
func (s *Server) handleVoiceSession(c *gin.Context) {
	if s.newRecognizer == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "voice sessions are not configured"})
		return
	}
	userID := c.Param("userId")

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "user_id", userID, "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	sess := &session{conn: conn}
	recognizer := s.newRecognizer()
	speaker := &sessionSpeaker{synth: s.synth, send: sess.send}

	responder := voice.ResponderFunc(func(ctx context.Context, text string) (string, error) {
		return s.engine.Process(ctx, userID, text).Message, nil
	})

	controller := voice.NewController(recognizer, speaker, responder, s.voiceCfg, voice.Hooks{
		OnPhaseChange: func(p voice.Phase) {
			sess.trySend(sessionFrame{Event: "phase", Phase: string(p)})
		},
		OnUserMessage: func(text string) {
			sess.trySend(sessionFrame{Event: "transcript", Text: text})
		},
		OnAssistantMessage: func(text string) {
			sess.trySend(sessionFrame{Event: "reply", Text: text})
		},
	})
	defer controller.Stop()

	slog.Info("voice session opened", "user_id", userID)

	for {
		var frame sessionFrame
		if err := conn.ReadJSON(&frame); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				slog.Debug("voice session read failed", "user_id", userID, "error", err)
			}
			slog.Info("voice session closed", "user_id", userID)
			return
		}

		switch frame.Event {
		case "start":
			controller.Start(c.Request.Context())
		case "media":
			audio, err := base64.StdEncoding.DecodeString(frame.Payload)
			if err != nil {
				sess.trySend(sessionFrame{Event: "error", Message: "media payload must be base64"})
				continue
			}
			if err := recognizer.WriteAudio(audio); err != nil {
				slog.Debug("dropping audio chunk", "user_id", userID, "error", err)
			}
		case "stop":
			controller.Stop()
		default:
			sess.trySend(sessionFrame{Event: "error", Message: "unknown event: " + frame.Event})
		}
	}
}

// session serializes frame writes; gorilla connections allow one concurrent
// writer.
type session struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

func (s *session) send(frame sessionFrame) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteJSON(frame)
}

func (s *session) trySend(frame sessionFrame) {
	if err := s.send(frame); err != nil {
		slog.Debug("failed to send session frame", "event", frame.Event, "error", err)
	}
}

// sessionSpeaker delivers replies as base64 audio frames over the socket.
// Without a synthesizer the reply frame alone carries the turn; playback is
// considered started the moment the audio frame is written.
type sessionSpeaker struct {
	synth tts.Synthesizer
	send  func(sessionFrame) error
}

func (sp *sessionSpeaker) Speak(ctx context.Context, text string, onStarted func()) error {
	if sp.synth == nil {
		if onStarted != nil {
			onStarted()
		}
		return nil
	}

	audio, err := sp.synth.Synthesize(ctx, text)
	if errors.Is(err, tts.ErrUnavailable) {
		if onStarted != nil {
			onStarted()
		}
		return nil
	}
	if err != nil {
		return err
	}

	if onStarted != nil {
		onStarted()
	}
	return sp.send(sessionFrame{
		Event:   "audio",
		Payload: base64.StdEncoding.EncodeToString(audio),
	})
}

func (sp *sessionSpeaker) Stop() {}
