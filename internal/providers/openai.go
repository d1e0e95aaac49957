// Package providers implements the AI collaborator: a single-shot client for
// any OpenAI-compatible chat-completions endpoint (Gemini by default), with
// optional inline image upload.
package providers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/crystaldolphin/awaybot/internal/shared/stringutils"
)

// ErrEmptyResponse is returned when the model answers with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Options configure a Provider.
type Options struct {
	Name         string
	APIKey       string
	APIBase      string
	Model        string
	MaxTokens    int
	Temperature  float64
	Timeout      time.Duration
	ExtraHeaders map[string]string
	HTTPClient   *http.Client
}

// Provider makes direct HTTP calls to an OpenAI-compatible endpoint.
type Provider struct {
	name         string
	apiKey       string
	apiBase      string
	model        string
	maxTokens    int
	temperature  float64
	extraHeaders map[string]string
	httpClient   *http.Client
}

// NewProvider constructs a Provider from raw options.
func NewProvider(o Options) *Provider {
	if o.MaxTokens <= 0 {
		o.MaxTokens = 2048
	}
	if o.Timeout <= 0 {
		o.Timeout = 120 * time.Second
	}
	client := o.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: o.Timeout}
	}
	base := strings.TrimRight(o.APIBase, "/")
	if base == "" {
		base = "https://api.openai.com/v1"
	}
	return &Provider{
		name:         o.Name,
		apiKey:       o.APIKey,
		apiBase:      base,
		model:        o.Model,
		maxTokens:    o.MaxTokens,
		temperature:  o.Temperature,
		extraHeaders: o.ExtraHeaders,
		httpClient:   client,
	}
}

func (p *Provider) Name() string  { return p.name }
func (p *Provider) Model() string { return p.model }

// Complete sends one user prompt, with the image at imagePath attached when
// it is non-empty, and returns the model's text. No retry is attempted.
func (p *Provider) Complete(ctx context.Context, prompt, imagePath string) (string, error) {
	content, err := buildUserContent(prompt, imagePath)
	if err != nil {
		return "", err
	}

	body := map[string]any{
		"model": p.model,
		"messages": []map[string]any{
			{"role": "user", "content": content},
		},
		"max_tokens":  p.maxTokens,
		"temperature": p.temperature,
	}
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.apiBase+"/chat/completions", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}
	for k, v := range p.extraHeaders {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("HTTP request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	slog.Debug("provider: completion", "provider", p.name, "model", p.model,
		"status", resp.StatusCode, "elapsed", time.Since(start), "image", imagePath != "")
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d: %s", resp.StatusCode, friendlyHTTPError(resp.StatusCode, raw))
	}
	return parseCompletion(raw)
}

// buildUserContent returns the prompt string, or a multimodal block list
// with the image embedded as a base64 data URL.
func buildUserContent(prompt, imagePath string) (any, error) {
	if imagePath == "" {
		return prompt, nil
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	mimeType := mime.TypeByExtension(strings.ToLower(filepath.Ext(imagePath)))
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, fmt.Errorf("not an image: %s (%s)", filepath.Base(imagePath), mimeType)
	}
	b64 := base64.StdEncoding.EncodeToString(data)
	return []map[string]any{
		{"type": "text", "text": prompt},
		{"type": "image_url", "image_url": map[string]any{"url": fmt.Sprintf("data:%s;base64,%s", mimeType, b64)}},
	}, nil
}

// completionBody is the subset of the chat completion response we care about.
type completionBody struct {
	Choices []struct {
		Message struct {
			Content any `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func parseCompletion(raw []byte) (string, error) {
	var body completionBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if body.Error != nil && body.Error.Message != "" {
		return "", errors.New(body.Error.Message)
	}
	if len(body.Choices) == 0 {
		return "", fmt.Errorf("empty choices in response")
	}

	var text string
	switch c := body.Choices[0].Message.Content.(type) {
	case string:
		text = c
	case []any:
		// Some gateways return content as a list of typed parts.
		var sb strings.Builder
		for _, part := range c {
			m, ok := part.(map[string]any)
			if !ok {
				continue
			}
			if s, ok := m["text"].(string); ok {
				sb.WriteString(s)
			}
		}
		text = sb.String()
	}
	text = stringutils.StripThink(text)
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func friendlyHTTPError(code int, body []byte) string {
	if code == http.StatusTooManyRequests {
		return "rate limit exceeded"
	}
	var eb completionBody
	if json.Unmarshal(body, &eb) == nil && eb.Error != nil && eb.Error.Message != "" {
		return eb.Error.Message
	}
	return stringutils.Truncate(strings.TrimSpace(string(body)), 300)
}

func stripPrefix(model string, prefixes []string) string {
	lower := strings.ToLower(model)
	for _, pfx := range prefixes {
		if strings.HasPrefix(lower, pfx) {
			return model[len(pfx):]
		}
	}
	return model
}
