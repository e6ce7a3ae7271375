package main

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/fake"
)

func TestNewCompletionClientProviders(t *testing.T) {
	config := defaultConfig()
	client, err := NewCompletionClient(&config)
	require.NoError(t, err)
	assert.IsType(t, &OpenRouterClient{}, client)

	config.LLM.Provider = "fake"
	client, err = NewCompletionClient(&config)
	require.NoError(t, err)
	assert.IsType(t, &langchainClient{}, client)

	config.LLM.Provider = "carrier-pigeon"
	_, err = NewCompletionClient(&config)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestFakeProviderReplies(t *testing.T) {
	config := defaultConfig()
	config.LLM.Provider = "fake"
	config.LLM.FakeResponses = []string{"first", "second"}

	client, err := NewCompletionClient(&config)
	require.NoError(t, err)

	transcript := []Message{{Role: RoleUser, Content: "Hello"}}
	reply, err := client.Complete(context.Background(), "", transcript, "")
	require.NoError(t, err)
	assert.Equal(t, "first", reply)

	reply, err = client.Complete(context.Background(), "", transcript, "")
	require.NoError(t, err)
	assert.Equal(t, "second", reply)
}

func TestLangchainClientRebuildsOnKeyChange(t *testing.T) {
	var keys []string
	client := newLangchainClient(func(apiKey string) (llms.Model, error) {
		keys = append(keys, apiKey)
		return fake.NewFakeLLM([]string{"ok"}), nil
	})

	for _, key := range []string{"a", "a", "b"} {
		_, err := client.Complete(context.Background(), key, nil, "m")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"a", "b"}, keys)
}

func TestLangchainClientFactoryError(t *testing.T) {
	client := newLangchainClient(func(string) (llms.Model, error) {
		return nil, errors.New("no credentials")
	})

	_, err := client.Complete(context.Background(), "k", nil, "m")
	require.ErrorIs(t, err, ErrProvider)
	assert.True(t, IsNetworkOrAPIFailure(err))
}

func TestLangchainClientProviderError(t *testing.T) {
	client := newLangchainClient(func(string) (llms.Model, error) {
		return fake.NewFakeLLM(nil), nil
	})

	_, err := client.Complete(context.Background(), "k", []Message{{Role: RoleUser, Content: "hi"}}, "")
	require.ErrorIs(t, err, ErrProvider)
}
