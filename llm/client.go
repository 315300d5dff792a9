// Package llm provides chat clients for the language model backends. The
// primary target is a local server speaking the OpenAI chat API; native
// Ollama and Anthropic backends sit behind the same interface.
package llm

import (
	"context"

	"github.com/shellsage/shellsage/errors"
	"github.com/shellsage/shellsage/session"
)

// Options carries per-request generation parameters.
type Options struct {
	Model       string
	Temperature float64
	MaxTokens   int
}

// Chunk is one streamed piece of a response. A terminal error (other than
// cancellation) arrives as a chunk with Err set; the channel then closes.
type Chunk struct {
	Text string
	Err  error
}

// Client is the interface all backends implement. Stream returns a finite,
// non-restartable channel of chunks; the producer observes ctx at every send
// and releases the underlying connection on all exits, including
// cancellation.
type Client interface {
	Chat(ctx context.Context, messages []session.Message, opts Options) (string, error)
	Stream(ctx context.Context, messages []session.Message, opts Options) (<-chan Chunk, error)
}

// ForProvider builds the client selected by the provider name. baseURL is the
// local server URL for the openai and ollama providers and an optional
// endpoint override for anthropic.
func ForProvider(provider, baseURL, model string) (Client, error) {
	switch provider {
	case "openai", "":
		return NewOpenAIClient(baseURL, model)
	case "ollama":
		return NewOllamaClient(baseURL, model)
	case "anthropic":
		return NewAnthropicClient(baseURL, model)
	case "mock":
		return &MockClient{}, nil
	}
	return nil, errors.New("unknown provider %q (use openai, ollama, anthropic or mock)", provider)
}

// emit sends a chunk unless the context is already done. It reports whether
// the producer should keep going.
func emit(ctx context.Context, ch chan<- Chunk, c Chunk) bool {
	select {
	case <-ctx.Done():
		return false
	case ch <- c:
		return true
	}
}
