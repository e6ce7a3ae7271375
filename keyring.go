package main

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "orchat"

func apiKeyUser(provider string) string {
	return "apikey_" + provider
}

// SaveAPIKeyToKeyring securely stores API keys in the OS keyring
func SaveAPIKeyToKeyring(provider, apiKey string) error {
	err := keyring.Set(keyringService, apiKeyUser(provider), apiKey)
	if err != nil {
		return fmt.Errorf("failed to store API key in keyring: %w", err)
	}
	return nil
}

// GetAPIKeyFromKeyring retrieves API keys from the OS keyring
func GetAPIKeyFromKeyring(provider string) (string, error) {
	apiKey, err := keyring.Get(keyringService, apiKeyUser(provider))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil // API key not found is not an error
		}
		return "", fmt.Errorf("failed to retrieve API key from keyring: %w", err)
	}
	return apiKey, nil
}

// DeleteAPIKeyFromKeyring removes API keys from the OS keyring
func DeleteAPIKeyFromKeyring(provider string) error {
	err := keyring.Delete(keyringService, apiKeyUser(provider))
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete API key from keyring: %w", err)
	}
	return nil
}
