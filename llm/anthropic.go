package llm

import (
	"context"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/shellsage/shellsage/errors"
	"github.com/shellsage/shellsage/session"
)

// AnthropicClient is the Anthropic backend. It mostly exists for proxies that
// expose the Anthropic API locally; ANTHROPIC_API_KEY must be set.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates an Anthropic client. baseURL may be empty to use
// the default endpoint.
func NewAnthropicClient(baseURL, model string) (*AnthropicClient, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, errors.New("ANTHROPIC_API_KEY environment variable not set")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	client := anthropic.NewClient(opts...)
	return &AnthropicClient{client: &client, model: model}, nil
}

func (c *AnthropicClient) params(messages []session.Message, opts Options) anthropic.MessageNewParams {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2000
	}

	converted, system := toAnthropicMessages(messages)
	p := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  converted,
	}
	if system != "" {
		p.System = []anthropic.TextBlockParam{{Text: system}}
	}
	if opts.Temperature > 0 {
		p.Temperature = anthropic.Float(opts.Temperature)
	}
	return p
}

// toAnthropicMessages converts session history; the system turn becomes the
// dedicated system parameter, observations become user turns.
func toAnthropicMessages(messages []session.Message) ([]anthropic.MessageParam, string) {
	var out []anthropic.MessageParam
	var system string

	for _, m := range messages {
		switch m.Role {
		case "system":
			system = m.Content
		case "assistant":
			if m.Content == "" {
				continue
			}
			out = append(out, anthropic.MessageParam{
				Role: anthropic.MessageParamRoleAssistant,
				Content: []anthropic.ContentBlockParamUnion{{
					OfText: &anthropic.TextBlockParam{Text: m.Content},
				}},
			})
		case "tool":
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock("[command result]\n"+m.Content)))
		default:
			out = append(out, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	return out, system
}

// Chat sends a blocking request.
func (c *AnthropicClient) Chat(ctx context.Context, messages []session.Message, opts Options) (string, error) {
	resp, err := c.client.Messages.New(ctx, c.params(messages, opts))
	if err != nil {
		return "", errors.Wrapf(err, "message request failed")
	}

	var text string
	for _, block := range resp.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			text += tb.Text
		}
	}
	return text, nil
}

// Stream sends a streaming request, forwarding text deltas as chunks.
func (c *AnthropicClient) Stream(ctx context.Context, messages []session.Message, opts Options) (<-chan Chunk, error) {
	ch := make(chan Chunk)
	stream := c.client.Messages.NewStreaming(ctx, c.params(messages, opts))

	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			delta, ok := event.AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			if text, ok := delta.Delta.AsAny().(anthropic.TextDelta); ok && text.Text != "" {
				if !emit(ctx, ch, Chunk{Text: text.Text}) {
					return
				}
			}
		}
		if err := stream.Err(); err != nil && ctx.Err() == nil {
			emit(ctx, ch, Chunk{Err: errors.Wrapf(err, "stream failed")})
		}
	}()

	return ch, nil
}
