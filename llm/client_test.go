package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/shellsage/shellsage/session"
)

func TestForProvider(t *testing.T) {
	if _, err := ForProvider("mock", "", ""); err != nil {
		t.Errorf("mock provider failed: %v", err)
	}
	if _, err := ForProvider("openai", "http://localhost:1234", "m"); err != nil {
		t.Errorf("openai provider failed: %v", err)
	}
	if _, err := ForProvider("ollama", "http://localhost:11434", "m"); err != nil {
		t.Errorf("ollama provider failed: %v", err)
	}
	if _, err := ForProvider("gpt4all", "http://x", "m"); err == nil {
		t.Error("unknown provider accepted")
	}
	// The default provider needs a URL.
	if _, err := ForProvider("openai", "", "m"); err == nil {
		t.Error("openai provider accepted an empty URL")
	}
}

func TestV1URL(t *testing.T) {
	cases := []struct{ in, want string }{
		{"http://localhost:1234", "http://localhost:1234/v1"},
		{"http://localhost:1234/", "http://localhost:1234/v1"},
		{"http://localhost:1234/v1", "http://localhost:1234/v1"},
	}
	for _, tc := range cases {
		if got := v1URL(tc.in); got != tc.want {
			t.Errorf("v1URL(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMockChatConsumesResponses(t *testing.T) {
	m := &MockClient{Responses: []string{"one", "two"}}
	for _, want := range []string{"one", "two"} {
		got, err := m.Chat(context.Background(), nil, Options{})
		if err != nil || got != want {
			t.Errorf("Chat = %q, %v; want %q", got, err, want)
		}
	}
	// Exhausted: parrots the last user message.
	got, _ := m.Chat(context.Background(), []session.Message{{Role: "user", Content: "ping"}}, Options{})
	if !strings.Contains(got, "ping") {
		t.Errorf("fallback reply = %q", got)
	}
}

func TestMockStreamReassembles(t *testing.T) {
	m := &MockClient{Responses: []string{"run `ls -la` now"}}
	ch, err := m.Stream(context.Background(), nil, Options{})
	if err != nil {
		t.Fatal(err)
	}
	var b strings.Builder
	for chunk := range ch {
		b.WriteString(chunk.Text)
	}
	if b.String() != "run `ls -la` now" {
		t.Errorf("reassembled %q", b.String())
	}
}

func TestMockStreamStopsOnCancel(t *testing.T) {
	m := &MockClient{Responses: []string{strings.Repeat("word ", 1000)}}
	ctx, cancel := context.WithCancel(context.Background())
	ch, err := m.Stream(ctx, nil, Options{})
	if err != nil {
		t.Fatal(err)
	}

	// Take one chunk, then cancel; the channel must close soon after.
	<-ch
	cancel()
	for range ch {
	}
}
