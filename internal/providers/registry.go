package providers

import "strings"

// ProviderSpec is the metadata record for one OpenAI-compatible endpoint.
type ProviderSpec struct {
	Name           string   // config field name, e.g. "gemini"
	Keywords       []string // model-name keywords for matching (lowercase)
	EnvKey         string   // env var consulted for the API key
	DisplayName    string   // shown in `awaybot status`
	DefaultAPIBase string   // base URL when none is configured
	DefaultModel   string   // model used when none is configured
	StripPrefixes  []string // "prefix/" forms removed from model names
	IsLocal        bool     // local deployment, no key required
}

// Label returns the display name.
func (s ProviderSpec) Label() string {
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return strings.ToTitle(s.Name[:1]) + s.Name[1:]
}

// PROVIDERS is the registry. Order = match priority.
var PROVIDERS = []ProviderSpec{
	{
		Name:           "gemini",
		Keywords:       []string{"gemini"},
		EnvKey:         "GEMINI_API_KEY",
		DisplayName:    "Gemini",
		DefaultAPIBase: "https://generativelanguage.googleapis.com/v1beta/openai",
		DefaultModel:   "gemini-2.0-flash",
		StripPrefixes:  []string{"gemini/", "google/"},
	},
	{
		Name:           "openai",
		Keywords:       []string{"openai", "gpt"},
		EnvKey:         "OPENAI_API_KEY",
		DisplayName:    "OpenAI",
		DefaultAPIBase: "https://api.openai.com/v1",
		DefaultModel:   "gpt-4o-mini",
		StripPrefixes:  []string{"openai/"},
	},
	{
		Name:           "openrouter",
		Keywords:       []string{"openrouter"},
		EnvKey:         "OPENROUTER_API_KEY",
		DisplayName:    "OpenRouter",
		DefaultAPIBase: "https://openrouter.ai/api/v1",
		DefaultModel:   "google/gemini-2.0-flash-001",
		StripPrefixes:  []string{"openrouter/"},
	},
	{
		Name:           "groq",
		Keywords:       []string{"groq"},
		EnvKey:         "GROQ_API_KEY",
		DisplayName:    "Groq",
		DefaultAPIBase: "https://api.groq.com/openai/v1",
		DefaultModel:   "llama-3.2-90b-vision-preview",
		StripPrefixes:  []string{"groq/"},
	},
	{
		Name:        "vllm",
		Keywords:    []string{"vllm"},
		DisplayName: "vLLM/Local",
		IsLocal:     true,
	},
	{
		Name:        "custom",
		DisplayName: "Custom",
	},
}

// FindByName returns the ProviderSpec whose Name equals name.
func FindByName(name string) *ProviderSpec {
	name = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(name)), "-", "_")
	for i := range PROVIDERS {
		if PROVIDERS[i].Name == name {
			return &PROVIDERS[i]
		}
	}
	return nil
}

// FindByModel matches a provider by model-name keyword (case-insensitive).
func FindByModel(model string) *ProviderSpec {
	lower := strings.ToLower(model)
	if prefix, _, ok := strings.Cut(lower, "/"); ok {
		if s := FindByName(prefix); s != nil {
			return s
		}
	}
	for i := range PROVIDERS {
		for _, kw := range PROVIDERS[i].Keywords {
			if strings.Contains(lower, kw) {
				return &PROVIDERS[i]
			}
		}
	}
	return nil
}
