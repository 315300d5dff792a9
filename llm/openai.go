package llm

import (
	"context"
	"os"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/shellsage/shellsage/errors"
	"github.com/shellsage/shellsage/session"
)

// OpenAIClient talks to any server speaking the OpenAI chat-completion API:
// LM Studio, llama.cpp, vLLM, Ollama's /v1 endpoint, or the real thing.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a client for the given base URL. Local servers
// typically ignore authentication, so OPENAI_API_KEY is optional and a
// placeholder is sent when unset.
func NewOpenAIClient(baseURL, model string) (*OpenAIClient, error) {
	if baseURL == "" {
		return nil, errors.New("LLM server URL not configured")
	}

	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		key = "local"
	}
	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithBaseURL(v1URL(baseURL)),
	}

	c := openai.NewClient(opts...)
	// The SDK returns a value; the pointer keeps one shared client.
	return &OpenAIClient{client: &c, model: model}, nil
}

func v1URL(baseURL string) string {
	baseURL = strings.TrimRight(baseURL, "/")
	if strings.HasSuffix(baseURL, "/v1") {
		return baseURL
	}
	return baseURL + "/v1"
}

func (c *OpenAIClient) params(messages []session.Message, opts Options) openai.ChatCompletionNewParams {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	p := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(model),
		Messages: toOpenAIMessages(messages),
	}
	if opts.Temperature > 0 {
		p.Temperature = openai.Float(opts.Temperature)
	}
	if opts.MaxTokens > 0 {
		p.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}
	return p
}

// toOpenAIMessages converts session history to the wire format. Observation
// turns ("tool" role) go out as user messages: local servers routinely reject
// tool messages that lack a native tool-call exchange.
func toOpenAIMessages(messages []session.Message) []openai.ChatCompletionMessageParamUnion {
	var out []openai.ChatCompletionMessageParamUnion
	for _, m := range messages {
		switch m.Role {
		case "system":
			out = append(out, openai.SystemMessage(m.Content))
		case "assistant":
			out = append(out, openai.AssistantMessage(m.Content))
		case "tool":
			out = append(out, openai.UserMessage("[command result]\n"+m.Content))
		default:
			out = append(out, openai.UserMessage(m.Content))
		}
	}
	return out
}

// Chat sends a blocking completion request.
func (c *OpenAIClient) Chat(ctx context.Context, messages []session.Message, opts Options) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, c.params(messages, opts))
	if err != nil {
		return "", errors.Wrapf(err, "chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// Stream sends a streaming completion request. The SSE stream is closed on
// every exit path, including context cancellation.
func (c *OpenAIClient) Stream(ctx context.Context, messages []session.Message, opts Options) (<-chan Chunk, error) {
	ch := make(chan Chunk)
	stream := c.client.Chat.Completions.NewStreaming(ctx, c.params(messages, opts))

	go func() {
		defer close(ch)
		defer stream.Close()

		for stream.Next() {
			chunk := stream.Current()
			if len(chunk.Choices) == 0 {
				continue
			}
			if text := chunk.Choices[0].Delta.Content; text != "" {
				if !emit(ctx, ch, Chunk{Text: text}) {
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
