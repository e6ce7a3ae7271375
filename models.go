package main

import (
	"slices"
	"strings"
)

// ModelOption is one entry of the model picker.
type ModelOption struct {
	Label    string
	Value    string
	Category string
}

// ModelOptions is the catalog offered by the model picker. Any other model id
// the backend accepts can still be typed in directly.
var ModelOptions = []ModelOption{
	// OpenAI Models
	{Label: "GPT-4o", Value: "openai/gpt-4o", Category: "OpenAI"},
	{Label: "GPT-4o Mini", Value: "openai/gpt-4o-mini", Category: "OpenAI"},
	{Label: "GPT-4 Turbo", Value: "openai/gpt-4-turbo", Category: "OpenAI"},
	{Label: "GPT-4 Turbo Preview", Value: "openai/gpt-4-turbo-preview", Category: "OpenAI"},
	{Label: "GPT-4", Value: "openai/gpt-4", Category: "OpenAI"},
	{Label: "GPT-4 32K", Value: "openai/gpt-4-32k", Category: "OpenAI"},
	{Label: "GPT-3.5 Turbo", Value: "openai/gpt-3.5-turbo", Category: "OpenAI"},
	{Label: "GPT-3.5 Turbo 16K", Value: "openai/gpt-3.5-turbo-16k", Category: "OpenAI"},
	{Label: "GPT-3.5 Turbo Instruct", Value: "openai/gpt-3.5-turbo-instruct", Category: "OpenAI"},

	// Anthropic Models
	{Label: "Claude 3.5 Sonnet", Value: "anthropic/claude-3.5-sonnet", Category: "Anthropic"},
	{Label: "Claude 3.5 Haiku", Value: "anthropic/claude-3-5-haiku-20241022", Category: "Anthropic"},
	{Label: "Claude 3 Opus", Value: "anthropic/claude-3-opus", Category: "Anthropic"},
	{Label: "Claude 3 Sonnet", Value: "anthropic/claude-3-sonnet", Category: "Anthropic"},
	{Label: "Claude 3 Haiku", Value: "anthropic/claude-3-haiku", Category: "Anthropic"},
	{Label: "Claude 2.1", Value: "anthropic/claude-2.1", Category: "Anthropic"},
	{Label: "Claude 2", Value: "anthropic/claude-2", Category: "Anthropic"},
	{Label: "Claude Instant 1.2", Value: "anthropic/claude-instant-1.2", Category: "Anthropic"},

	// Google Models
	{Label: "Gemini Pro 1.5", Value: "google/gemini-pro-1.5", Category: "Google"},
	{Label: "Gemini Pro", Value: "google/gemini-pro", Category: "Google"},
	{Label: "Gemini Flash 1.5", Value: "google/gemini-flash-1.5", Category: "Google"},
	{Label: "Gemini Flash 1.5 8B", Value: "google/gemini-flash-1.5-8b", Category: "Google"},
	{Label: "PaLM 2 Chat", Value: "google/palm-2-chat-bison", Category: "Google"},
	{Label: "PaLM 2 Code Chat", Value: "google/palm-2-codechat-bison", Category: "Google"},

	// Meta Llama Models
	{Label: "Llama 3.1 405B", Value: "meta-llama/llama-3.1-405b-instruct", Category: "Meta"},
	{Label: "Llama 3.1 70B", Value: "meta-llama/llama-3.1-70b-instruct", Category: "Meta"},
	{Label: "Llama 3.1 8B", Value: "meta-llama/llama-3.1-8b-instruct", Category: "Meta"},
	{Label: "Llama 3 70B", Value: "meta-llama/llama-3-70b-instruct", Category: "Meta"},
	{Label: "Llama 3 8B", Value: "meta-llama/llama-3-8b-instruct", Category: "Meta"},
	{Label: "Llama 2 70B Chat", Value: "meta-llama/llama-2-70b-chat", Category: "Meta"},
	{Label: "Llama 2 13B Chat", Value: "meta-llama/llama-2-13b-chat", Category: "Meta"},
	{Label: "Llama 2 7B Chat", Value: "meta-llama/llama-2-7b-chat", Category: "Meta"},
	{Label: "Code Llama 34B Instruct", Value: "meta-llama/codellama-34b-instruct", Category: "Meta"},
	{Label: "Code Llama 13B Instruct", Value: "meta-llama/codellama-13b-instruct", Category: "Meta"},
	{Label: "Code Llama 7B Instruct", Value: "meta-llama/codellama-7b-instruct", Category: "Meta"},

	// Mistral Models
	{Label: "Mistral Large", Value: "mistralai/mistral-large", Category: "Mistral"},
	{Label: "Mistral Medium", Value: "mistralai/mistral-medium", Category: "Mistral"},
	{Label: "Mistral Small", Value: "mistralai/mistral-small", Category: "Mistral"},
	{Label: "Mistral 7B Instruct", Value: "mistralai/mistral-7b-instruct", Category: "Mistral"},
	{Label: "Mixtral 8x7B", Value: "mistralai/mixtral-8x7b-instruct", Category: "Mistral"},
	{Label: "Mixtral 8x22B", Value: "mistralai/mixtral-8x22b-instruct", Category: "Mistral"},
	{Label: "Codestral", Value: "mistralai/codestral", Category: "Mistral"},
	{Label: "Codestral Mamba", Value: "mistralai/codestral-mamba", Category: "Mistral"},

	// Cohere Models
	{Label: "Command R+", Value: "cohere/command-r-plus", Category: "Cohere"},
	{Label: "Command R", Value: "cohere/command-r", Category: "Cohere"},
	{Label: "Command", Value: "cohere/command", Category: "Cohere"},
	{Label: "Command Nightly", Value: "cohere/command-nightly", Category: "Cohere"},
	{Label: "Command Light", Value: "cohere/command-light", Category: "Cohere"},
	{Label: "Command Light Nightly", Value: "cohere/command-light-nightly", Category: "Cohere"},

	// Perplexity Models
	{Label: "Llama 3.1 Sonar 70B", Value: "perplexity/llama-3.1-sonar-large-128k-online", Category: "Perplexity"},
	{Label: "Llama 3.1 Sonar 8B", Value: "perplexity/llama-3.1-sonar-small-128k-online", Category: "Perplexity"},
	{Label: "Llama 3.1 Sonar 70B Chat", Value: "perplexity/llama-3.1-sonar-large-128k-chat", Category: "Perplexity"},
	{Label: "Llama 3.1 Sonar 8B Chat", Value: "perplexity/llama-3.1-sonar-small-128k-chat", Category: "Perplexity"},

	// xAI Models
	{Label: "Grok Beta", Value: "x-ai/grok-beta", Category: "xAI"},
	{Label: "Grok Vision Beta", Value: "x-ai/grok-vision-beta", Category: "xAI"},

	// Microsoft Models
	{Label: "WizardLM 2 8x22B", Value: "microsoft/wizardlm-2-8x22b", Category: "Microsoft"},
	{Label: "WizardLM 2 7B", Value: "microsoft/wizardlm-2-7b", Category: "Microsoft"},
	{Label: "Phi 3 Medium 128K", Value: "microsoft/phi-3-medium-128k-instruct", Category: "Microsoft"},
	{Label: "Phi 3 Mini 128K", Value: "microsoft/phi-3-mini-128k-instruct", Category: "Microsoft"},

	// Qwen Models
	{Label: "Qwen 2.5 72B", Value: "qwen/qwen-2.5-72b-instruct", Category: "Qwen"},
	{Label: "Qwen 2.5 32B", Value: "qwen/qwen-2.5-32b-instruct", Category: "Qwen"},
	{Label: "Qwen 2.5 14B", Value: "qwen/qwen-2.5-14b-instruct", Category: "Qwen"},
	{Label: "Qwen 2.5 7B", Value: "qwen/qwen-2.5-7b-instruct", Category: "Qwen"},
	{Label: "Qwen 2 72B", Value: "qwen/qwen-2-72b-instruct", Category: "Qwen"},
	{Label: "Qwen 2 7B", Value: "qwen/qwen-2-7b-instruct", Category: "Qwen"},
	{Label: "QwQ 32B Preview", Value: "qwen/qwq-32b-preview", Category: "Qwen"},

	// DeepSeek Models
	{Label: "DeepSeek V3", Value: "deepseek/deepseek-v3", Category: "DeepSeek"},
	{Label: "DeepSeek Chat", Value: "deepseek/deepseek-chat", Category: "DeepSeek"},
	{Label: "DeepSeek Coder", Value: "deepseek/deepseek-coder", Category: "DeepSeek"},
	{Label: "DeepSeek R1", Value: "deepseek/deepseek-r1", Category: "DeepSeek"},

	// Nous Research Models
	{Label: "Nous Hermes 2 Yi 34B", Value: "nousresearch/nous-hermes-2-yi-34b", Category: "Nous Research"},
	{Label: "Nous Hermes 2 Mixtral 8x7B", Value: "nousresearch/nous-hermes-2-mixtral-8x7b-dpo", Category: "Nous Research"},
	{Label: "Nous Hermes 2 Llama 70B", Value: "nousresearch/nous-hermes-llama2-70b", Category: "Nous Research"},
	{Label: "Nous Hermes 2 Llama 13B", Value: "nousresearch/nous-hermes-llama2-13b", Category: "Nous Research"},
	{Label: "Nous Capybara 7B", Value: "nousresearch/nous-capybara-7b", Category: "Nous Research"},

	// Anthropic-like Models
	{Label: "Claude 3 Haiku (Self-Moderated)", Value: "anthropic/claude-3-haiku:beta", Category: "Anthropic"},
	{Label: "Claude 3 Sonnet (Self-Moderated)", Value: "anthropic/claude-3-sonnet:beta", Category: "Anthropic"},
	{Label: "Claude 3 Opus (Self-Moderated)", Value: "anthropic/claude-3-opus:beta", Category: "Anthropic"},

	// OpenChat Models
	{Label: "OpenChat 3.5", Value: "openchat/openchat-3.5-1210", Category: "OpenChat"},
	{Label: "OpenChat 7B", Value: "openchat/openchat-7b", Category: "OpenChat"},

	// Hugging Face Models
	{Label: "Zephyr 7B Beta", Value: "huggingfaceh4/zephyr-7b-beta", Category: "Hugging Face"},
	{Label: "Zephyr 7B Alpha", Value: "huggingfaceh4/zephyr-7b-alpha", Category: "Hugging Face"},
	{Label: "StarChat Beta", Value: "huggingfaceh4/starchat-beta", Category: "Hugging Face"},

	// Databricks Models
	{Label: "DBRX Instruct", Value: "databricks/dbrx-instruct", Category: "Databricks"},

	// 01-ai Models
	{Label: "Yi 34B Chat", Value: "01-ai/yi-34b-chat", Category: "01-ai"},
	{Label: "Yi 6B", Value: "01-ai/yi-6b", Category: "01-ai"},

	// Alpaca Models
	{Label: "Alpaca 7B", Value: "alpaca/alpaca-7b", Category: "Alpaca"},

	// Vicuna Models
	{Label: "Vicuna 13B", Value: "lmsys/vicuna-13b-v1.5", Category: "LMSYS"},
	{Label: "Vicuna 7B", Value: "lmsys/vicuna-7b-v1.5", Category: "LMSYS"},

	// Together Models
	{Label: "RedPajama INCITE 7B Chat", Value: "togethercomputer/redpajama-incite-7b-chat", Category: "Together"},
	{Label: "RedPajama INCITE 3B Chat", Value: "togethercomputer/redpajama-incite-3b-chat", Category: "Together"},
	{Label: "Falcon 7B Instruct", Value: "tiiuae/falcon-7b-instruct", Category: "TII UAE"},
	{Label: "Falcon 40B Instruct", Value: "tiiuae/falcon-40b-instruct", Category: "TII UAE"},

	// Stability AI Models
	{Label: "StableLM Zephyr 3B", Value: "stabilityai/stablelm-zephyr-3b", Category: "Stability AI"},
	{Label: "StableCode Instruct Alpha 3B", Value: "stabilityai/stablecode-instruct-alpha-3b", Category: "Stability AI"},

	// Phind Models
	{Label: "Phind CodeLlama 34B v2", Value: "phind/phind-codellama-34b", Category: "Phind"},

	// Airoboros Models
	{Label: "Airoboros 70B", Value: "jondurbin/airoboros-l2-70b", Category: "Jondurbin"},

	// WizardCoder Models
	{Label: "WizardCoder Python 34B", Value: "wizardlm/wizardcoder-python-34b", Category: "WizardLM"},
	{Label: "WizardCoder 15B", Value: "wizardlm/wizardcoder-15b", Category: "WizardLM"},

	// Synthia Models
	{Label: "Synthia 70B", Value: "migtissera/synthia-70b", Category: "Migtissera"},

	// Pygmalion Models
	{Label: "Pygmalion 2 13B", Value: "pygmalionai/mythalion-13b", Category: "PygmalionAI"},

	// Chronos Models
	{Label: "Chronos Hermes 13B", Value: "austism/chronos-hermes-13b", Category: "Austism"},

	// Neural Chat Models
	{Label: "Neural Chat 7B", Value: "intel/neural-chat-7b", Category: "Intel"},

	// OpenHermes Models
	{Label: "OpenHermes 2.5 Mistral 7B", Value: "teknium/openhermes-2.5-mistral-7b", Category: "Teknium"},

	// Dolphin Models
	{Label: "Dolphin 2.5 Mixtral 8x7B", Value: "cognitivecomputations/dolphin-2.5-mixtral-8x7b", Category: "Cognitive Computations"},
	{Label: "Dolphin 2.6 Phi 2", Value: "cognitivecomputations/dolphin-2.6-phi-2", Category: "Cognitive Computations"},

	// Orca Models
	{Label: "Orca 2 13B", Value: "microsoft/orca-2-13b", Category: "Microsoft"},
	{Label: "Orca 2 7B", Value: "microsoft/orca-2-7b", Category: "Microsoft"},

	// Pplx Models
	{Label: "PPLX 7B Online", Value: "perplexity/pplx-7b-online", Category: "Perplexity"},
	{Label: "PPLX 70B Online", Value: "perplexity/pplx-70b-online", Category: "Perplexity"},
	{Label: "PPLX 7B Chat", Value: "perplexity/pplx-7b-chat", Category: "Perplexity"},
	{Label: "PPLX 70B Chat", Value: "perplexity/pplx-70b-chat", Category: "Perplexity"},

	// Solar Models
	{Label: "Solar 10.7B Instruct", Value: "upstage/solar-1-mini-chat", Category: "Upstage"},

	// Bagel Models
	{Label: "Bagel 34B", Value: "jondurbin/bagel-34b", Category: "Jondurbin"},

	// Goliath Models
	{Label: "Goliath 120B", Value: "alpindale/goliath-120b", Category: "Alpindale"},

	// Mixtral Models (additional)
	{Label: "Mixtral 8x7B Base", Value: "mistralai/mixtral-8x7b", Category: "Mistral"},
	{Label: "Mixtral 8x22B Base", Value: "mistralai/mixtral-8x22b", Category: "Mistral"},

	// Additional Code Models
	{Label: "CodeBooga 34B", Value: "oobabooga/deepseek-coder-33b-instruct", Category: "Oobabooga"},
	{Label: "MagiCoder S DS 6.7B", Value: "ise-uiuc/magicoder-s-ds-6.7b", Category: "ISE UIUC"},

	// Experimental Models
	{Label: "LLaVA 13B", Value: "liuhaotian/llava-13b", Category: "LLaVA"},
	{Label: "Claude 1 Instant", Value: "anthropic/claude-instant-1", Category: "Anthropic"},
	{Label: "Claude 1", Value: "anthropic/claude-1", Category: "Anthropic"},

	// Additional Qwen Models
	{Label: "Qwen 1.5 110B Chat", Value: "qwen/qwen1.5-110b-chat", Category: "Qwen"},
	{Label: "Qwen 1.5 72B Chat", Value: "qwen/qwen1.5-72b-chat", Category: "Qwen"},
	{Label: "Qwen 1.5 32B Chat", Value: "qwen/qwen1.5-32b-chat", Category: "Qwen"},
	{Label: "Qwen 1.5 14B Chat", Value: "qwen/qwen1.5-14b-chat", Category: "Qwen"},
	{Label: "Qwen 1.5 7B Chat", Value: "qwen/qwen1.5-7b-chat", Category: "Qwen"},
	{Label: "Qwen 1.5 4B Chat", Value: "qwen/qwen1.5-4b-chat", Category: "Qwen"},
	{Label: "Qwen 1.5 1.8B Chat", Value: "qwen/qwen1.5-1.8b-chat", Category: "Qwen"},
	{Label: "Qwen 1.5 0.5B Chat", Value: "qwen/qwen1.5-0.5b-chat", Category: "Qwen"},

	// Additional Meta Models
	{Label: "Llama Guard 7B", Value: "meta-llama/llamaguard-7b", Category: "Meta"},
	{Label: "Llama Guard 2 8B", Value: "meta-llama/llamaguard-2-8b", Category: "Meta"},

	// More Specialized Models
	{Label: "ReMM SLERP L2 13B", Value: "undi95/remm-slerp-l2-13b", Category: "Undi95"},
	{Label: "Toppy M 7B", Value: "undi95/toppy-m-7b", Category: "Undi95"},
	{Label: "MythoMax L2 13B", Value: "gryphe/mythomax-l2-13b", Category: "Gryphe"},
	{Label: "MythoMist 7B", Value: "gryphe/mythomist-7b", Category: "Gryphe"},

	// Vision Models
	{Label: "LLaVA 1.5 7B", Value: "liuhaotian/llava-v1.5-7b", Category: "LLaVA"},
	{Label: "LLaVA 1.5 13B", Value: "liuhaotian/llava-v1.5-13b", Category: "LLaVA"},
	{Label: "Moondream 2", Value: "vikhyatk/moondream2", Category: "Vikhyatk"},

	// Recent Models
	{Label: "Yi 1.5 34B Chat", Value: "01-ai/yi-1.5-34b-chat", Category: "01-ai"},
	{Label: "Yi 1.5 9B Chat", Value: "01-ai/yi-1.5-9b-chat", Category: "01-ai"},
	{Label: "Yi 1.5 6B Chat", Value: "01-ai/yi-1.5-6b-chat", Category: "01-ai"},

	// Hermes Models
	{Label: "Hermes 2 Pro Mistral 7B", Value: "nousresearch/hermes-2-pro-mistral-7b", Category: "Nous Research"},
	{Label: "Hermes 2 Theta Llama 3 8B", Value: "nousresearch/hermes-2-theta-llama-3-8b", Category: "Nous Research"},

	// FireFunction Models
	{Label: "FireFunction v1", Value: "fireworks-ai/firefunction-v1", Category: "Fireworks AI"},

	// Additional Specialized Models
	{Label: "Stripedhyena Nous 7B", Value: "togethercomputer/stripedhyena-nous-7b", Category: "Together"},
	{Label: "Llama 2 70B Code Instruct", Value: "codellama/codellama-70b-instruct", Category: "CodeLlama"},

	// More Recent Additions
	{Label: "Gemma 7B IT", Value: "google/gemma-7b-it", Category: "Google"},
	{Label: "Gemma 2B IT", Value: "google/gemma-2b-it", Category: "Google"},
	{Label: "Gemma 2 9B IT", Value: "google/gemma-2-9b-it", Category: "Google"},
	{Label: "Gemma 2 27B IT", Value: "google/gemma-2-27b-it", Category: "Google"},

	// Noromaid Models
	{Label: "Noromaid 20B", Value: "neversleep/noromaid-20b", Category: "NeverSleep"},
	{Label: "Noromaid Mixtral 8x7B", Value: "neversleep/noromaid-mixtral-8x7b-instruct", Category: "NeverSleep"},
}

// Categories returns the catalog's categories in first-appearance order.
func Categories() []string {
	var out []string
	for _, m := range ModelOptions {
		if !slices.Contains(out, m.Category) {
			out = append(out, m.Category)
		}
	}
	return out
}

// SearchModels returns the options whose label, id or category contains
// query, ignoring case. A blank query returns the whole catalog.
func SearchModels(query string) []ModelOption {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return slices.Clone(ModelOptions)
	}
	var out []ModelOption
	for _, m := range ModelOptions {
		if strings.Contains(strings.ToLower(m.Label), query) ||
			strings.Contains(strings.ToLower(m.Value), query) ||
			strings.Contains(strings.ToLower(m.Category), query) {
			out = append(out, m)
		}
	}
	return out
}

// LookupModel finds the catalog entry for a model id.
func LookupModel(value string) (ModelOption, bool) {
	for _, m := range ModelOptions {
		if m.Value == value {
			return m, true
		}
	}
	return ModelOption{}, false
}

// ModelLabel returns the display name of a model id, or the id itself when
// it is not in the catalog.
func ModelLabel(value string) string {
	if m, ok := LookupModel(value); ok {
		return m.Label
	}
	return value
}
