package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestModelCatalogValuesAreUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range ModelOptions {
		assert.False(t, seen[m.Value], "duplicate model %s", m.Value)
		seen[m.Value] = true
		assert.NotEmpty(t, m.Label)
		assert.Contains(t, m.Value, "/")
	}
	assert.True(t, seen[DefaultModelFallback], "the default model is offered by the picker")
}

func TestCategoriesInOrder(t *testing.T) {
	categories := Categories()
	assert.Equal(t, "OpenAI", categories[0])
	assert.Contains(t, categories, "Anthropic")
	assert.Len(t, categories, len(uniqueCategories()))
}

func uniqueCategories() map[string]struct{} {
	out := map[string]struct{}{}
	for _, m := range ModelOptions {
		out[m.Category] = struct{}{}
	}
	return out
}

func TestSearchModels(t *testing.T) {
	assert.Len(t, SearchModels("  "), len(ModelOptions))

	for _, m := range SearchModels("HAIKU") {
		assert.Equal(t, "Anthropic", m.Category)
	}
	assert.NotEmpty(t, SearchModels("haiku"))
	assert.Empty(t, SearchModels("no-such-model"))
}

func TestModelLabel(t *testing.T) {
	assert.Equal(t, "GPT-4o Mini", ModelLabel("openai/gpt-4o-mini"))
	assert.Equal(t, "custom/model", ModelLabel("custom/model"))

	_, ok := LookupModel("custom/model")
	assert.False(t, ok)
}
