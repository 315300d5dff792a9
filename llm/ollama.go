package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shellsage/shellsage/errors"
	"github.com/shellsage/shellsage/session"
)

// OllamaClient speaks Ollama's native /api/chat protocol: one JSON object
// per line, terminated by a message with done=true. No third-party SDK
// covers this protocol, so the client sits directly on net/http.
type OllamaClient struct {
	baseURL string
	model   string
	http    *http.Client
}

// NewOllamaClient creates a client for a native Ollama server.
func NewOllamaClient(baseURL, model string) (*OllamaClient, error) {
	if baseURL == "" {
		return nil, errors.New("LLM server URL not configured")
	}
	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		http:    &http.Client{Timeout: 5 * time.Minute},
	}, nil
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

func (c *OllamaClient) request(ctx context.Context, messages []session.Message, opts Options, stream bool) (*http.Response, error) {
	model := opts.Model
	if model == "" {
		model = c.model
	}
	req := ollamaChatRequest{
		Model:    model,
		Messages: toOllamaMessages(messages),
		Stream:   stream,
	}
	if opts.Temperature > 0 || opts.MaxTokens > 0 {
		req.Options = &ollamaOptions{Temperature: opts.Temperature, NumPredict: opts.MaxTokens}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.Wrapf(err, "encode chat request")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrapf(err, "build chat request")
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot reach Ollama at %s", c.baseURL)
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.New("Ollama returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	return resp, nil
}

func toOllamaMessages(messages []session.Message) []ollamaMessage {
	out := make([]ollamaMessage, 0, len(messages))
	for _, m := range messages {
		role := m.Role
		content := m.Content
		if role == "tool" {
			// Observations go out as user turns; see toOpenAIMessages.
			role = "user"
			content = "[command result]\n" + content
		}
		out = append(out, ollamaMessage{Role: role, Content: content})
	}
	return out
}

// Chat sends a blocking request.
func (c *OllamaClient) Chat(ctx context.Context, messages []session.Message, opts Options) (string, error) {
	resp, err := c.request(ctx, messages, opts, false)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	var parsed ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", errors.Wrapf(err, "decode chat response")
	}
	if parsed.Error != "" {
		return "", errors.New("Ollama error: %s", parsed.Error)
	}
	return parsed.Message.Content, nil
}

// Stream sends a streaming request and parses the line-JSON response. The
// body is closed on every exit, including cancellation; malformed lines are
// skipped rather than aborting the stream.
func (c *OllamaClient) Stream(ctx context.Context, messages []session.Message, opts Options) (<-chan Chunk, error) {
	resp, err := c.request(ctx, messages, opts, true)
	if err != nil {
		return nil, err
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)
		defer resp.Body.Close()

		scanner := bufio.NewScanner(resp.Body)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case <-ctx.Done():
				return
			default:
			}

			line := bytes.TrimSpace(scanner.Bytes())
			if len(line) == 0 {
				continue
			}
			var parsed ollamaChatResponse
			if err := json.Unmarshal(line, &parsed); err != nil {
				continue
			}
			if parsed.Error != "" {
				emit(ctx, ch, Chunk{Err: errors.New("Ollama error: %s", parsed.Error)})
				return
			}
			if parsed.Message.Content != "" {
				if !emit(ctx, ch, Chunk{Text: parsed.Message.Content}) {
					return
				}
			}
			if parsed.Done {
				return
			}
		}
		if err := scanner.Err(); err != nil && ctx.Err() == nil {
			emit(ctx, ch, Chunk{Err: fmt.Errorf("stream read failed: %w", err)})
		}
	}()

	return ch, nil
}
