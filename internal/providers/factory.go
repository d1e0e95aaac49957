package providers

import "time"

// Params are the raw values needed to construct a Provider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	ProviderName string // registry name, e.g. "gemini"
	APIKey       string
	APIBase      string
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	ExtraHeaders map[string]string
}

// New creates a Provider, filling the base URL and model from the registry
// when they are not configured.
func New(p Params) *Provider {
	spec := FindByName(p.ProviderName)
	if spec == nil && p.Model != "" {
		spec = FindByModel(p.Model)
	}
	if spec == nil {
		spec = FindByName("gemini")
	}

	base := p.APIBase
	if base == "" {
		base = spec.DefaultAPIBase
	}
	model := p.Model
	if model == "" {
		model = spec.DefaultModel
	}
	return NewProvider(Options{
		APIKey:       p.APIKey,
		APIBase:      base,
		Model:        stripPrefix(model, spec.StripPrefixes),
		MaxTokens:    p.MaxTokens,
		Temperature:  p.Temperature,
		Timeout:      p.Timeout,
		ExtraHeaders: p.ExtraHeaders,
		Name:         spec.Name,
	})
}
