package provider

const (
	ProviderGemini     = "gemini"
	ProviderOpenAI     = "openai"
	ProviderOpenRouter = "openrouter"
	ProviderGroq       = "groq"
	ProviderVLLM       = "vllm"
	ProviderCustom     = "custom"
)

// ProviderConfig selects and configures the AI endpoint.
type ProviderConfig struct {
	Name           string            `json:"name" yaml:"name"` // registry name; empty = infer from model
	APIKey         string            `json:"apiKey" yaml:"apiKey"`
	APIBase        string            `json:"apiBase,omitempty" yaml:"apiBase,omitempty"`
	Model          string            `json:"model" yaml:"model"`
	MaxTokens      int               `json:"maxTokens" yaml:"maxTokens"`
	Temperature    float64           `json:"temperature" yaml:"temperature"`
	TimeoutSeconds int               `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	ExtraHeaders   map[string]string `json:"extraHeaders,omitempty" yaml:"extraHeaders,omitempty"`
}

func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Name:           ProviderGemini,
		Model:          "gemini-2.0-flash",
		MaxTokens:      2048,
		Temperature:    0.7,
		TimeoutSeconds: 120,
	}
}
