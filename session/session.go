// Package session holds the in-memory conversation state for one process:
// history, current expert and response modes, and the last extracted
// candidate list. Nothing is persisted; a session dies with the process.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shellsage/shellsage/expert"
	"github.com/shellsage/shellsage/parser"
)

// Message is one turn of conversation. Role is "system", "user", "assistant"
// or "tool" (command observations). Interrupted tags assistant turns whose
// stream was cancelled mid-flight; the partial text is kept.
type Message struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	Interrupted bool   `json:"interrupted,omitempty"`
}

func newMessage(role, content string) Message {
	return Message{ID: uuid.NewString(), Role: role, Content: content}
}

// Session owns the conversation state. It is not safe for concurrent use;
// each process runs exactly one logical session.
type Session struct {
	Expert   expert.Mode
	Response expert.ResponseMode

	// LastCandidates is the candidate list from the most recent assistant
	// turn, kept for the selection step.
	LastCandidates []parser.Candidate

	registry expert.Registry
	messages []Message
}

// New creates a session with the given persona registry and initial modes.
func New(registry expert.Registry, mode expert.Mode, response expert.ResponseMode) *Session {
	return &Session{
		Expert:   mode,
		Response: response,
		registry: registry,
	}
}

// Messages returns the history in order. The returned slice is shared; treat
// it as read-only.
func (s *Session) Messages() []Message {
	return s.messages
}

// Len returns the number of messages in history.
func (s *Session) Len() int { return len(s.messages) }

// SystemPrompt builds the system prompt for the current modes.
func (s *Session) SystemPrompt() string {
	return s.registry.SystemPrompt(s.Expert, s.Response)
}

// Profile returns the active expert profile.
func (s *Session) Profile() expert.Profile {
	p, _ := s.registry.Profile(s.Expert)
	return p
}

// Generation returns the temperature and token budget for the current modes.
func (s *Session) Generation() (float64, int) {
	p := s.Profile()
	return p.Temperature, p.MaxTokens(s.Response)
}

// AddUser appends a user turn, making sure the system message is in place
// first. The very first user turn gets a persona reminder prefix, which helps
// local models that pay little attention to system prompts.
func (s *Session) AddUser(content string) {
	s.ensureSystem()
	if !s.hasUserTurn() {
		content = fmt.Sprintf("[You are %s] %s", s.Profile().Name, content)
	}
	s.messages = append(s.messages, newMessage("user", content))
}

// AddAssistant appends a completed assistant turn.
func (s *Session) AddAssistant(content string) {
	s.messages = append(s.messages, newMessage("assistant", content))
}

// AddInterrupted appends a cancelled assistant turn: the partial text
// received before cancellation, tagged so it is never mistaken for a
// complete answer.
func (s *Session) AddInterrupted(partial string) {
	m := newMessage("assistant", partial)
	m.Interrupted = true
	s.messages = append(s.messages, m)
}

// AddObservation appends a command execution result as an ordinary
// conversation turn, preserving history ordering even for failures.
func (s *Session) AddObservation(content string) {
	s.messages = append(s.messages, newMessage("tool", content))
}

// SetExpert switches persona. History is always cleared: stale turns from a
// different persona must never leak into the new persona's context.
func (s *Session) SetExpert(m expert.Mode) {
	s.Expert = m
	s.Clear()
}

// SetResponse switches between quick and full answers, rewriting the system
// message in place. History survives a response-mode switch.
func (s *Session) SetResponse(rm expert.ResponseMode) {
	s.Response = rm
	if len(s.messages) > 0 && s.messages[0].Role == "system" {
		s.messages[0].Content = s.SystemPrompt()
	}
}

// Clear empties the history and the candidate list.
func (s *Session) Clear() {
	s.messages = nil
	s.LastCandidates = nil
}

func (s *Session) ensureSystem() {
	if len(s.messages) > 0 && s.messages[0].Role == "system" {
		return
	}
	s.messages = append([]Message{newMessage("system", s.SystemPrompt())}, s.messages...)
}

func (s *Session) hasUserTurn() bool {
	for _, m := range s.messages {
		if m.Role == "user" {
			return true
		}
	}
	return false
}

// ExecutionMode maps the current persona onto the extraction gate: only the
// Linux expert surfaces commands.
func (s *Session) ExecutionMode() parser.ExecutionMode {
	if s.Expert == expert.Linux {
		return parser.ModeLinuxExpert
	}
	return parser.ModeOther
}
