// ABOUTME: HTTP client for the reasoning model endpoint
// ABOUTME: Sends assembled prompts and returns raw model text

package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/dbimpact/db-impact-analyzer/models"
)

// Reasoner produces a raw text completion for an assembled prompt.
type Reasoner interface {
	Infer(ctx context.Context, prompt string) (string, error)
}

// InferenceClient speaks the messages protocol used by Anthropic-compatible
// reasoning endpoints.
type InferenceClient struct {
	baseURL string
	apiKey  string
	model   string
	client  *http.Client
}

const (
	reasonerConnectTimeout = 5 * time.Second
	reasonerReadTimeout    = 30 * time.Second
	reasonerMaxTokens      = 2000
	anthropicVersion       = "2023-06-01"
)

func NewInferenceClient(baseURL, apiKey, model string) *InferenceClient {
	return &InferenceClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client: &http.Client{
			Timeout: reasonerReadTimeout,
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: reasonerConnectTimeout,
				}).DialContext,
			},
		},
	}
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Infer submits the prompt as a single user message and concatenates the text
// blocks of the response.
func (c *InferenceClient) Infer(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(messagesRequest{
		Model:     c.model,
		MaxTokens: reasonerMaxTokens,
		Messages:  []message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal inference request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build inference request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return "", fmt.Errorf("inference request: %w", models.ErrTimeout)
		}
		return "", fmt.Errorf("inference request: %w: %v", models.ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", inferenceStatusError(resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read inference response: %w", models.ErrServiceUnavailable)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("decode inference response: %w", models.ErrMalformedResponse)
	}

	var text bytes.Buffer
	for _, block := range parsed.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("inference response had no text content: %w", models.ErrMalformedResponse)
	}
	return text.String(), nil
}

func inferenceStatusError(status int) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("inference endpoint returned %d: %w", status, models.ErrPermissionDenied)
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("inference endpoint returned %d: %w", status, models.ErrRateLimited)
	case status >= 500:
		return fmt.Errorf("inference endpoint returned %d: %w", status, models.ErrServiceUnavailable)
	default:
		return fmt.Errorf("inference endpoint returned unexpected status %d: %w", status, models.ErrUnknown)
	}
}

var _ Reasoner = (*InferenceClient)(nil)
