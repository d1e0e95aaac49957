package config

import (
	"time"

	"github.com/crystaldolphin/awaybot/internal/providers"
)

// ProviderSpec resolves the registry entry for the configured provider.
//
// Priority:
//  1. Explicit provider name
//  2. Prefix or keyword match on the model name
//  3. Gemini
func (c *Config) ProviderSpec() *providers.ProviderSpec {
	if spec := providers.FindByName(c.Provider.Name); spec != nil {
		return spec
	}
	if c.Provider.Model != "" {
		if spec := providers.FindByModel(c.Provider.Model); spec != nil {
			return spec
		}
	}
	return providers.FindByName("gemini")
}

// ProviderParams converts the provider section into constructor parameters.
func (c *Config) ProviderParams() providers.Params {
	timeout := time.Duration(c.Provider.TimeoutSeconds) * time.Second
	return providers.Params{
		ProviderName: c.ProviderSpec().Name,
		APIKey:       c.Provider.APIKey,
		APIBase:      c.Provider.APIBase,
		Model:        c.Provider.Model,
		MaxTokens:    c.Provider.MaxTokens,
		Temperature:  c.Provider.Temperature,
		Timeout:      timeout,
		ExtraHeaders: c.Provider.ExtraHeaders,
	}
}

// HasAPIKey reports whether AI calls can authenticate. Local providers need
// no key.
func (c *Config) HasAPIKey() bool {
	return c.Provider.APIKey != "" || c.ProviderSpec().IsLocal
}
