package models

import (
	"errors"
	"fmt"
)

type SessionState string

const (
	StateIdle      SessionState = "idle"
	StateAnalyzing SessionState = "analyzing"
	StateCompleted SessionState = "completed"
	StateFailed    SessionState = "failed"
)

var ErrInvalidTransition = errors.New("invalid session transition")

// Session tracks a single submission from the caller's side:
// Idle -> Analyzing -> Completed | Failed, and Reset back to Idle.
// It is not safe for concurrent use; each caller owns its own.
type Session struct {
	state   SessionState
	payload *SubmissionPayload
	report  *VerificationReport
	message string
}

func NewSession() *Session {
	return &Session{state: StateIdle}
}

func (s *Session) State() SessionState { return s.state }

func (s *Session) Payload() *SubmissionPayload { return s.payload }

func (s *Session) Report() *VerificationReport { return s.report }

// Message is the failure text; empty unless the session failed.
func (s *Session) Message() string { return s.message }

func (s *Session) Begin(p SubmissionPayload) error {
	if s.state != StateIdle {
		return fmt.Errorf("%w: begin from %s", ErrInvalidTransition, s.state)
	}
	s.payload = &p
	s.state = StateAnalyzing
	return nil
}

func (s *Session) Complete(r *VerificationReport) error {
	if s.state != StateAnalyzing {
		return fmt.Errorf("%w: complete from %s", ErrInvalidTransition, s.state)
	}
	if r == nil {
		return fmt.Errorf("%w: nil report", ErrInvalidTransition)
	}
	s.report = r
	s.state = StateCompleted
	return nil
}

func (s *Session) Fail(message string) error {
	if s.state != StateAnalyzing {
		return fmt.Errorf("%w: fail from %s", ErrInvalidTransition, s.state)
	}
	s.message = message
	s.state = StateFailed
	return nil
}

// SessionEvent is pushed to stream clients on every state change.
type SessionEvent struct {
	State      SessionState        `json:"state"`
	Submission *SubmissionPayload  `json:"submission,omitempty"`
	Report     *VerificationReport `json:"report,omitempty"`
	Message    string              `json:"message,omitempty"`
}

func (s *Session) Event() SessionEvent {
	return SessionEvent{
		State:      s.state,
		Submission: s.payload,
		Report:     s.report,
		Message:    s.message,
	}
}

// Reset discards the current submission and its outcome.
func (s *Session) Reset() {
	*s = Session{state: StateIdle}
}
