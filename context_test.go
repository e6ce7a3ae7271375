package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokens(t *testing.T) {
	assert.Equal(t, 0, estimateTokens(""))
	assert.Equal(t, 1, estimateTokens("abc"))
	assert.Equal(t, 2, estimateTokens("abcde"))
	assert.Equal(t, 1, estimateTokens("éééé"), "runes, not bytes")
}

func TestModelContextSize(t *testing.T) {
	assert.Equal(t, 32768, modelContextSize("openai/gpt-4-32k"))
	assert.Equal(t, 32768, modelContextSize("mistralai/some-new-model:free"))
	assert.Equal(t, 200_000, modelContextSize("Anthropic/claude-unknown"))
	assert.Equal(t, defaultUnknownContextRef, modelContextSize("nobody/mystery"))
	assert.Equal(t, defaultUnknownContextRef, modelContextSize("mystery"))
}

func TestChatContextInfo(t *testing.T) {
	chat := Chat{Messages: []Message{
		{Role: RoleUser, Content: strings.Repeat("a", 40)},
		{Role: RoleAssistant, Content: strings.Repeat("b", 80)},
	}}
	info := chatContextInfo(chat, "nobody/mystery")

	assert.Equal(t, 2, info.Messages)
	assert.Equal(t, 10+messageOverheadTokens, info.UserTokens)
	assert.Equal(t, 20+messageOverheadTokens, info.ReplyTokens)
	assert.Equal(t, info.UserTokens+info.ReplyTokens, info.UsedTokens)
	assert.Equal(t, defaultUnknownContextRef-info.UsedTokens, info.FreeTokens)
	assert.False(t, info.OverBudget)
}

func TestChatContextInfoOverBudget(t *testing.T) {
	chat := Chat{Messages: []Message{{Role: RoleUser, Content: strings.Repeat("x", 4*defaultUnknownContextRef)}}}
	info := chatContextInfo(chat, "nobody/mystery")

	assert.True(t, info.OverBudget)
	assert.Zero(t, info.FreeTokens)
	assert.Contains(t, renderContextInfo(info), "no longer fits")
}

func TestRenderContextInfo(t *testing.T) {
	info := chatContextInfo(Chat{}, "openai/gpt-4o")
	out := renderContextInfo(info)

	assert.Contains(t, out, "GPT-4o")
	assert.Contains(t, out, "Free space")
	assert.NotContains(t, out, "in this chat")
	assert.Equal(t, strings.Repeat("⛶ ", contextBarWidth-1)+"⛶", renderContextBar(info))
}

func TestCalculateBarSegments(t *testing.T) {
	full, partial := calculateBarSegments(0)
	assert.Zero(t, full)
	assert.False(t, partial)

	full, partial = calculateBarSegments(35)
	assert.Equal(t, 3, full)
	assert.True(t, partial)

	full, partial = calculateBarSegments(150)
	assert.Equal(t, contextBarWidth, full)
	assert.False(t, partial)
}

func TestFormatTokenCount(t *testing.T) {
	assert.Equal(t, "999", formatTokenCount(999))
	assert.Equal(t, "1.5k", formatTokenCount(1500))
	assert.Equal(t, "2.0M", formatTokenCount(2_000_000))
	assert.Equal(t, 12.5, percentage(1, 8))
	assert.Zero(t, percentage(1, 0))
}
