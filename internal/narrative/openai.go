package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// OpenAIGenerator calls an OpenAI-compatible Chat Completions endpoint.
type OpenAIGenerator struct {
	apiKey     string
	baseURL    string
	model      string
	client     *http.Client
	maxRetries int
	backoff    time.Duration
}

// OpenAIOption configures the generator.
type OpenAIOption func(*OpenAIGenerator)

// WithBaseURL points the generator at a compatible gateway.
func WithBaseURL(u string) OpenAIOption {
	return func(g *OpenAIGenerator) {
		if u != "" {
			g.baseURL = strings.TrimRight(u, "/")
		}
	}
}

// WithModel sets the default model.
func WithModel(model string) OpenAIOption {
	return func(g *OpenAIGenerator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithHTTPClient replaces the HTTP client, including any proxy configured earlier.
func WithHTTPClient(c *http.Client) OpenAIOption {
	return func(g *OpenAIGenerator) { g.client = c }
}

// WithProxy routes requests through proxyURL.
func WithProxy(proxyURL string) OpenAIOption {
	return func(g *OpenAIGenerator) {
		if proxyURL == "" {
			return
		}
		u, err := url.Parse(proxyURL)
		if err != nil {
			log.Printf("[WARN] ignoring invalid proxy %q: %v", proxyURL, err)
			return
		}
		g.client.Transport = &http.Transport{Proxy: http.ProxyURL(u)}
	}
}

// WithRetry sets how many times a failed call is retried and the first backoff delay.
func WithRetry(maxRetries int, backoff time.Duration) OpenAIOption {
	return func(g *OpenAIGenerator) {
		g.maxRetries = maxRetries
		g.backoff = backoff
	}
}

// NewOpenAIGenerator returns ErrNoCredential when apiKey is empty.
func NewOpenAIGenerator(apiKey string, opts ...OpenAIOption) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, ErrNoCredential
	}
	g := &OpenAIGenerator{
		apiKey:     apiKey,
		baseURL:    "https://api.openai.com/v1",
		model:      "gpt-4o-mini",
		client:     &http.Client{Timeout: 60 * time.Second},
		maxRetries: 1,
		backoff:    time.Second,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *OpenAIGenerator) Model() string { return g.model }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends one chat completion, retrying transport errors, 429 and 5xx with exponential backoff.
func (g *OpenAIGenerator) Generate(ctx context.Context, req Request) (string, error) {
	model := req.Model
	if model == "" {
		model = g.model
	}
	body := chatRequest{Model: model, Temperature: 0.3}
	if req.System != "" {
		body.Messages = append(body.Messages, chatMessage{Role: "system", Content: req.System})
	}
	body.Messages = append(body.Messages, chatMessage{Role: "user", Content: req.Prompt})
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("openai: marshal request: %w", err)
	}

	var lastErr error
	for i := 0; i <= g.maxRetries; i++ {
		text, retryable, err := g.do(ctx, data)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || i == g.maxRetries {
			break
		}
		wait := g.backoff * time.Duration(1<<uint(i))
		log.Printf("[WARN] openai call failed (attempt %d/%d): %v, retrying in %v", i+1, g.maxRetries+1, err, wait)
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(wait):
		}
	}
	return "", lastErr
}

func (g *OpenAIGenerator) do(ctx context.Context, data []byte) (string, bool, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", false, err
		}
		return "", true, fmt.Errorf("%w: %v", ErrGeneratorDown, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", false, fmt.Errorf("%w: status %d", ErrNoCredential, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		retryable := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return "", retryable, fmt.Errorf("%w: status %d: %s", ErrGeneratorDown, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("openai: decode response: %w", err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", false, fmt.Errorf("%w: empty completion", ErrGeneratorDown)
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), false, nil
}
