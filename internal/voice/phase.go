// Package voice implements the real-time conversation pipeline: utterance
// capture with silence debouncing, speech output, and the phase state
// machine coordinating them.
package voice

import "time"

// Phase is the conversation state. Exactly one phase is active per session,
// owned exclusively by the Controller.
type Phase string

// Conversation phases.
const (
	PhaseIdle      Phase = "idle"
	PhaseListening Phase = "listening"
	PhaseThinking  Phase = "thinking"
	PhaseSpeaking  Phase = "speaking"
	PhaseError     Phase = "error"
)

// Utterance is a finalized piece of user speech, produced by Capture after
// the silence window elapses with no new recognition updates.
type Utterance struct {
	FinalizedAt time.Time
	Text        string
}
