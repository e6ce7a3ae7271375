package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/tmc/langchaingo/llms"
)

const (
	contextBarWidth          = 10
	defaultUnknownContextRef = 8192
	// charsPerToken is the estimate used when no tokenizer is consulted.
	charsPerToken = 4
	// messageOverheadTokens covers the role and framing of each message.
	messageOverheadTokens = 4
)

// vendorContextSizes are fallbacks keyed by the vendor part of an
// OpenRouter model id, for models langchaingo does not know.
var vendorContextSizes = map[string]int{
	"anthropic":  200_000,
	"google":     1_000_000,
	"openai":     128_000,
	"x-ai":       131_072,
	"meta-llama": 128_000,
	"mistralai":  32_768,
	"deepseek":   64_000,
	"qwen":       32_768,
	"cohere":     128_000,
	"perplexity": 127_072,
}

// ContextInfo holds how much of a model's window a chat uses.
type ContextInfo struct {
	Model       string
	Messages    int
	TotalTokens int
	UsedTokens  int
	UserTokens  int
	ReplyTokens int
	FreeTokens  int
	OverBudget  bool
}

// chatContextInfo estimates the tokens the next request for chat would
// send to model.
func chatContextInfo(chat Chat, model string) ContextInfo {
	info := ContextInfo{
		Model:       model,
		Messages:    len(chat.Messages),
		TotalTokens: modelContextSize(model),
	}
	for _, msg := range chat.Messages {
		tokens := estimateTokens(msg.Content) + messageOverheadTokens
		if msg.Role == RoleUser {
			info.UserTokens += tokens
		} else {
			info.ReplyTokens += tokens
		}
	}
	info.UsedTokens = info.UserTokens + info.ReplyTokens
	info.FreeTokens = max(info.TotalTokens-info.UsedTokens, 0)
	info.OverBudget = info.UsedTokens > info.TotalTokens
	return info
}

// estimateTokens approximates the token count of text. OpenRouter reports
// exact usage only after the fact, and the BPE tables of a real tokenizer
// would have to be downloaded on first use.
func estimateTokens(text string) int {
	if text == "" {
		return 0
	}
	n := len([]rune(text))
	return (n + charsPerToken - 1) / charsPerToken
}

// modelContextSize returns the context window size for an OpenRouter model id.
// langchaingo's table is consulted first with the vendor prefix removed.
func modelContextSize(model string) int {
	vendor, name, found := strings.Cut(strings.ToLower(model), "/")
	if !found {
		name, vendor = vendor, ""
	}
	name = strings.TrimSuffix(name, ":free")

	// 2048 is langchaingo's answer for unknown models
	if size := llms.GetModelContextSize(name); size > 2048 {
		return size
	}
	if size, ok := vendorContextSizes[vendor]; ok {
		return size
	}
	return defaultUnknownContextRef
}

// renderContextInfo renders the context information as a formatted string.
func renderContextInfo(info ContextInfo) string {
	var b strings.Builder
	total := info.TotalTokens
	if total <= 0 {
		total = max(info.UsedTokens+info.FreeTokens, 1)
	}

	b.WriteString(fmt.Sprintf("%s   %s · %s/%s tokens (%.1f%%)\n",
		renderContextBar(info),
		ModelLabel(info.Model),
		formatTokenCount(info.UsedTokens),
		formatTokenCount(info.TotalTokens),
		percentage(clampInt(info.UsedTokens, 0, total), total),
	))
	b.WriteString("\n")
	b.WriteString(formatContextLine("Your messages", info.UserTokens, total, "⛁"))
	b.WriteString(formatContextLine("Replies", info.ReplyTokens, total, "⛁"))
	b.WriteString(formatContextLine("Free space", info.FreeTokens, total, "⛶"))
	if info.Messages > 0 {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("%s in this chat, counts are estimates.\n", formatMessageCount(info.Messages)))
	}
	if info.OverBudget {
		b.WriteString("The transcript no longer fits the model's window; start a new chat.\n")
	}
	return b.String()
}

// renderContextBar creates a visual bar representation of context usage.
func renderContextBar(info ContextInfo) string {
	total := info.TotalTokens
	if total <= 0 {
		total = max(info.UsedTokens+info.FreeTokens, 1)
	}

	used := clampInt(info.UsedTokens, 0, total)
	full, partial := calculateBarSegments(float64(used) / float64(total) * 100)

	segments := make([]string, 0, contextBarWidth)
	for i := 0; i < full; i++ {
		segments = append(segments, "⛁")
	}
	if partial && len(segments) < contextBarWidth {
		segments = append(segments, "⛀")
	}
	for len(segments) < contextBarWidth {
		segments = append(segments, "⛶")
	}
	return strings.Join(segments, " ")
}

func formatContextLine(label string, tokens, total int, symbol string) string {
	return fmt.Sprintf("%s   %s %s: %s tokens (%.1f%%)\n",
		renderCategoryBar(tokens, total, symbol),
		symbol,
		label,
		formatTokenCount(tokens),
		percentage(tokens, total),
	)
}

// renderCategoryBar returns a bar showing the share of a category.
func renderCategoryBar(tokens, total int, symbol string) string {
	pct := 0.0
	if total > 0 {
		pct = float64(tokens) / float64(total) * 100
	}
	full, partial := calculateBarSegments(pct)

	segments := make([]string, 0, contextBarWidth)
	for i := 0; i < full && len(segments) < contextBarWidth; i++ {
		segments = append(segments, symbol)
	}
	if partial && len(segments) < contextBarWidth {
		if symbol == "⛁" {
			segments = append(segments, "⛀")
		} else {
			segments = append(segments, symbol)
		}
	}
	for len(segments) < contextBarWidth {
		segments = append(segments, "⛶")
	}
	return strings.Join(segments, " ")
}

// calculateBarSegments converts a percentage into full segments and a flag
// for a trailing partial one.
func calculateBarSegments(pct float64) (int, bool) {
	if pct <= 0 {
		return 0, false
	}
	full := int(pct / 10)
	if full >= contextBarWidth {
		return contextBarWidth, false
	}
	return full, pct-float64(full*10) > 0
}

func formatTokenCount(tokens int) string {
	switch {
	case tokens >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(tokens)/1_000_000)
	case tokens >= 1_000:
		return fmt.Sprintf("%.1fk", float64(tokens)/1_000)
	default:
		return fmt.Sprintf("%d", tokens)
	}
}

func percentage(part, total int) float64 {
	if total <= 0 {
		return 0
	}
	return math.Round((float64(part)/float64(total))*1000) / 10
}

func clampInt(value, minValue, maxValue int) int {
	if value < minValue {
		return minValue
	}
	if value > maxValue {
		return maxValue
	}
	return value
}
