// Package ai integrates the optional auto-responder behind the room
// bot. The provider is addressed through its plain HTTP surface with an
// injectable client, so tests can point it at a local stub.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"trimchat/errors"
)

const defaultCompletionsURL = "https://api.openai.com/v1/chat/completions"

const defaultSystemPrompt = "You are TrimChat Bot, a friendly chat room assistant. Keep replies short and conversational."

// Config configures the completion endpoint and HTTP behavior.
type Config struct {
	CompletionsURL string
	APIKey         string
	Model          string
	SystemPrompt   string
	HTTPClient     *http.Client
}

// OpenAIResponder generates bot replies through an OpenAI-compatible
// chat-completions endpoint.
type OpenAIResponder struct {
	cfg Config
}

func NewOpenAIResponder(cfg Config) *OpenAIResponder {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if strings.TrimSpace(cfg.CompletionsURL) == "" {
		cfg.CompletionsURL = defaultCompletionsURL
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = defaultSystemPrompt
	}
	return &OpenAIResponder{cfg: cfg}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// GenerateReply asks the provider for a single reply to the prompt.
// Callers bound the call with their context; the room is never blocked
// on it.
func (r *OpenAIResponder) GenerateReply(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(completionRequest{
		Model: r.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: r.cfg.SystemPrompt},
			{Role: "user", Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.cfg.CompletionsURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)

	resp, err := r.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion call: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("completion call returned %d: %s", resp.StatusCode, string(body))
	}

	var parsed completionResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode completion response: %w", err)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", errors.ErrEmptyReply
	}
	return strings.TrimSpace(parsed.Choices[0].Message.Content), nil
}
