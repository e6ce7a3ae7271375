package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the OpenRouter API root.
	DefaultBaseURL = "https://openrouter.ai/api/v1"

	// NoResponsePlaceholder is returned when a successful response carries no
	// reply text.
	NoResponsePlaceholder = "No response from model."
)

var (
	// ErrNetwork wraps transport level failures (DNS, refused, reset, TLS).
	ErrNetwork = errors.New("network error")
	// ErrCancelled is returned when the request context is cancelled or its
	// deadline passes before a response arrives.
	ErrCancelled = errors.New("request cancelled")
)

// APIError is returned for any non-2xx response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error: %d - %s", e.StatusCode, e.Body)
}

// IsNetworkOrAPIFailure reports whether err came from the completion call.
func IsNetworkOrAPIFailure(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) || errors.Is(err, ErrNetwork) ||
		errors.Is(err, ErrCancelled) || errors.Is(err, ErrProvider)
}

// CompletionClient sends a transcript to a model and returns the reply.
// Implementations perform no retries.
type CompletionClient interface {
	Complete(ctx context.Context, apiKey string, transcript []Message, model string) (string, error)
}

// OpenRouterClient talks to an OpenAI compatible chat completions endpoint.
type OpenRouterClient struct {
	BaseURL    string
	HTTPClient *http.Client
	// Limiter, when set, throttles requests client side.
	Limiter *rate.Limiter
	// Referer and Title are the optional OpenRouter attribution headers.
	Referer string
	Title   string
}

// NewOpenRouterClient builds a client from the LLM configuration.
func NewOpenRouterClient(cfg LLMConfig) *OpenRouterClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &OpenRouterClient{
		BaseURL: strings.TrimRight(baseURL, "/"),
		// The engine bounds each turn with its own deadline; this is a
		// backstop for callers that pass a context without one.
		HTTPClient: &http.Client{Timeout: 10 * time.Minute},
		Referer:    cfg.Referer,
		Title:      cfg.Title,
	}
	if cfg.RequestsPerMinute > 0 {
		c.Limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}
	return c
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model    string        `json:"model"`
	Messages []wireMessage `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message *struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete posts the transcript and returns the first choice's content.
func (c *OpenRouterClient) Complete(ctx context.Context, apiKey string, transcript []Message, model string) (string, error) {
	body := completionRequest{Model: model, Messages: make([]wireMessage, 0, len(transcript))}
	for _, m := range transcript {
		body.Messages = append(body.Messages, wireMessage{Role: string(m.Role), Content: m.Content})
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")
	if c.Referer != "" {
		req.Header.Set("HTTP-Referer", c.Referer)
	}
	if c.Title != "" {
		req.Header.Set("X-Title", c.Title)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return "", fmt.Errorf("%w: read response: %v", ErrNetwork, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	var parsed completionResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrNetwork, err)
	}
	if len(parsed.Choices) == 0 || parsed.Choices[0].Message == nil || parsed.Choices[0].Message.Content == nil {
		return NoResponsePlaceholder, nil
	}
	return *parsed.Choices[0].Message.Content, nil
}
