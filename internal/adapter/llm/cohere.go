// Package llm provides chat-completion clients. Only the non-streaming API
// surface is used; responses are returned whole.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"embedkit/internal/domain"
)

const cohereDefaultBaseURL = "https://api.cohere.com"

// Options holds the sampling parameters sent with every chat request.
type Options struct {
	Temperature      float64
	P                float64
	FrequencyPenalty *float64
	PresencePenalty  *float64
}

// CohereClient talks to the Cohere v2 chat API.
type CohereClient struct {
	apiKey  string
	model   string
	baseURL string
	opts    Options
	client  *http.Client
}

type chatRequest struct {
	Model            string           `json:"model"`
	Messages         []domain.Message `json:"messages"`
	Temperature      float64          `json:"temperature"`
	P                float64          `json:"p"`
	Stream           bool             `json:"stream"`
	FrequencyPenalty *float64         `json:"frequency_penalty,omitempty"`
	PresencePenalty  *float64         `json:"presence_penalty,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"message"`
}

// NewCohereClient reads the API key from the named environment variable.
// An empty baseURL selects the public endpoint.
func NewCohereClient(apiKeyEnv, model, baseURL string, opts Options) (*CohereClient, error) {
	apiKey := os.Getenv(apiKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("API key not found in environment variable: %s", apiKeyEnv)
	}
	if baseURL == "" {
		baseURL = cohereDefaultBaseURL
	}

	return &CohereClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: baseURL,
		opts:    opts,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// Chat sends the full conversation history and returns the assistant reply.
func (c *CohereClient) Chat(ctx context.Context, messages []domain.Message) (string, error) {
	reqBody := chatRequest{
		Model:            c.model,
		Messages:         messages,
		Temperature:      c.opts.Temperature,
		P:                c.opts.P,
		Stream:           false,
		FrequencyPenalty: c.opts.FrequencyPenalty,
		PresencePenalty:  c.opts.PresencePenalty,
	}
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/v2/chat", bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200]
		}
		return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, preview)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(body, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if len(chatResp.Message.Content) == 0 {
		return "", fmt.Errorf("API returned no message content")
	}

	var out bytes.Buffer
	for _, part := range chatResp.Message.Content {
		if part.Type == "" || part.Type == "text" {
			out.WriteString(part.Text)
		}
	}
	return out.String(), nil
}

// ModelName returns the chat model in use.
func (c *CohereClient) ModelName() string {
	return c.model
}

// SamplingOptions returns the configured sampling parameters.
func (c *CohereClient) SamplingOptions() Options {
	return c.opts
}
