package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/fake"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// ErrProvider wraps failures reported by a langchaingo backend.
var ErrProvider = errors.New("provider error")

// NewCompletionClient returns the client for the configured provider.
func NewCompletionClient(config *Config) (CompletionClient, error) {
	switch config.LLM.Provider {
	case "", "openrouter":
		return NewOpenRouterClient(config.LLM), nil
	case "fake", "ollama", "openai", "anthropic", "googleai":
		return newLangchainClient(func(apiKey string) (llms.Model, error) {
			return getLLMClient(config, apiKey)
		}), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.LLM.Provider)
	}
}

// langchainClient adapts a langchaingo model to CompletionClient. The model is
// rebuilt whenever the API key changes.
type langchainClient struct {
	mu      sync.Mutex
	factory func(apiKey string) (llms.Model, error)
	llm     llms.Model
	key     string
}

func newLangchainClient(factory func(apiKey string) (llms.Model, error)) *langchainClient {
	return &langchainClient{factory: factory}
}

func (c *langchainClient) model(apiKey string) (llms.Model, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.llm != nil && c.key == apiKey {
		return c.llm, nil
	}
	llm, err := c.factory(apiKey)
	if err != nil {
		return nil, err
	}
	c.llm, c.key = llm, apiKey
	return llm, nil
}

// Complete implements CompletionClient.
func (c *langchainClient) Complete(ctx context.Context, apiKey string, transcript []Message, model string) (string, error) {
	llm, err := c.model(apiKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}

	messages := make([]llms.MessageContent, 0, len(transcript))
	for _, m := range transcript {
		role := llms.ChatMessageTypeHuman
		if m.Role == RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		messages = append(messages, llms.TextParts(role, m.Content))
	}

	var opts []llms.CallOption
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}
	resp, err := llm.GenerateContent(ctx, messages, opts...)
	if err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", ErrCancelled, ctx.Err())
		}
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		return NoResponsePlaceholder, nil
	}
	return resp.Choices[0].Content, nil
}

// getLLMClient creates and returns an LLM client based on the configuration
func getLLMClient(config *Config, apiKey string) (llms.Model, error) {
	if apiKey == "" {
		apiKey = config.LLM.APIKey
	}
	if apiKey == "" && config.LLM.Provider != "fake" && config.LLM.Provider != "ollama" {
		key, err := GetAPIKeyFromKeyring(config.LLM.Provider)
		if err == nil && key != "" {
			apiKey = key
		}
	}

	switch config.LLM.Provider {
	case "fake":
		responses := config.LLM.FakeResponses
		if len(responses) == 0 {
			responses = []string{"This is a canned reply."}
		}
		return fake.NewFakeLLM(responses), nil
	case "ollama":
		opts := []ollama.Option{
			ollama.WithModel(config.LLM.Model),
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, ollama.WithServerURL(config.LLM.BaseURL))
		}
		return ollama.New(opts...)
	case "openai":
		opts := []openai.Option{
			openai.WithModel(config.LLM.Model),
		}
		if apiKey != "" {
			opts = append(opts, openai.WithToken(apiKey))
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(config.LLM.BaseURL))
		}
		return openai.New(opts...)
	case "anthropic":
		opts := []anthropic.Option{
			anthropic.WithModel(config.LLM.Model),
		}
		if apiKey != "" {
			opts = append(opts, anthropic.WithToken(apiKey))
		}
		if config.LLM.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(config.LLM.BaseURL))
		}
		return anthropic.New(opts...)
	case "googleai":
		if apiKey == "" {
			apiKey = os.Getenv("GEMINI_API_KEY")
			if apiKey == "" {
				return nil, fmt.Errorf("missing Google AI API key. Set it in the config file or via GEMINI_API_KEY environment variable")
			}
		}
		return googleai.New(context.Background(),
			googleai.WithDefaultModel(config.LLM.Model),
			googleai.WithAPIKey(apiKey),
		)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", config.LLM.Provider)
	}
}
