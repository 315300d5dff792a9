package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/shellsage/shellsage/session"
)

// MockClient is a canned-response backend for tests and offline runs.
// Responses are consumed in order; when exhausted (or empty) it parrots the
// last user message.
type MockClient struct {
	Responses []string
	next      int
}

func (m *MockClient) reply(messages []session.Message) string {
	if m.next < len(m.Responses) {
		r := m.Responses[m.next]
		m.next++
		return r
	}
	last := ""
	for _, msg := range messages {
		if msg.Role == "user" {
			last = msg.Content
		}
	}
	return fmt.Sprintf("I am a mock model. You said: %q.", last)
}

// Chat returns the next canned response.
func (m *MockClient) Chat(ctx context.Context, messages []session.Message, opts Options) (string, error) {
	return m.reply(messages), nil
}

// Stream delivers the next canned response word by word, honoring
// cancellation between sends like a real backend.
func (m *MockClient) Stream(ctx context.Context, messages []session.Message, opts Options) (<-chan Chunk, error) {
	reply := m.reply(messages)
	ch := make(chan Chunk)

	go func() {
		defer close(ch)
		words := strings.SplitAfter(reply, " ")
		for _, w := range words {
			if w == "" {
				continue
			}
			if !emit(ctx, ch, Chunk{Text: w}) {
				return
			}
		}
	}()

	return ch, nil
}
