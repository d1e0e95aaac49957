package providers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// newTestServer returns a server that records the last request body and
// answers with status and body.
func newTestServer(t *testing.T, status int, body string, got *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", auth)
		}
		raw, _ := io.ReadAll(r.Body)
		if got != nil {
			if err := json.Unmarshal(raw, got); err != nil {
				t.Errorf("request is not JSON: %v", err)
			}
		}
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func okBody(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []map[string]any{{"message": map[string]any{"content": content}, "finish_reason": "stop"}},
	})
	return string(b)
}

// ---- Complete ---------------------------------------------------------------

func TestComplete_TextOnly(t *testing.T) {
	var req map[string]any
	srv := newTestServer(t, http.StatusOK, okBody("  It is a greeting.  "), &req)
	p := NewProvider(Options{APIKey: "sk-test", APIBase: srv.URL + "/", Model: "gemini-2.0-flash", Name: "gemini"})

	text, err := p.Complete(context.Background(), "Analyze this message: 'hi'", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "It is a greeting." {
		t.Errorf("unexpected text %q", text)
	}
	if req["model"] != "gemini-2.0-flash" {
		t.Errorf("unexpected model %v", req["model"])
	}
	msgs := req["messages"].([]any)
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	m := msgs[0].(map[string]any)
	if m["role"] != "user" || m["content"] != "Analyze this message: 'hi'" {
		t.Errorf("unexpected message %v", m)
	}
}

func TestComplete_WithImage(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "image_20260101_000000_abcd1234.jpg")
	if err := os.WriteFile(img, []byte("\xff\xd8\xff\xe0fakejpeg"), 0o600); err != nil {
		t.Fatal(err)
	}

	var req map[string]any
	srv := newTestServer(t, http.StatusOK, okBody("A cat."), &req)
	p := NewProvider(Options{APIKey: "sk-test", APIBase: srv.URL, Model: "m"})

	if _, err := p.Complete(context.Background(), "Describe and analyze this image.", img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	content := req["messages"].([]any)[0].(map[string]any)["content"].([]any)
	if len(content) != 2 {
		t.Fatalf("expected text+image blocks, got %d", len(content))
	}
	url := content[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	if !strings.HasPrefix(url, "data:image/jpeg;base64,") {
		t.Errorf("unexpected data URL prefix %q", url[:30])
	}
}

func TestComplete_MissingImage(t *testing.T) {
	p := NewProvider(Options{APIBase: "http://127.0.0.1:1"})
	if _, err := p.Complete(context.Background(), "x", "/nonexistent/img.jpg"); err == nil {
		t.Fatal("expected error for missing image")
	}
}

func TestComplete_HTTPError(t *testing.T) {
	srv := newTestServer(t, http.StatusBadRequest, `{"error":{"message":"API key not valid"}}`, nil)
	p := NewProvider(Options{APIKey: "sk-test", APIBase: srv.URL, Model: "m"})

	_, err := p.Complete(context.Background(), "x", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if err.Error() != "HTTP 400: API key not valid" {
		t.Errorf("unexpected error %q", err)
	}
}

func TestComplete_RateLimited(t *testing.T) {
	srv := newTestServer(t, http.StatusTooManyRequests, `quota`, nil)
	p := NewProvider(Options{APIKey: "sk-test", APIBase: srv.URL, Model: "m"})
	_, err := p.Complete(context.Background(), "x", "")
	if err == nil || !strings.Contains(err.Error(), "rate limit") {
		t.Errorf("expected rate limit error, got %v", err)
	}
}

func TestComplete_EmptyResponses(t *testing.T) {
	for _, body := range []string{`{"choices":[]}`, okBody("<think>only thoughts</think>")} {
		srv := newTestServer(t, http.StatusOK, body, nil)
		p := NewProvider(Options{APIKey: "sk-test", APIBase: srv.URL, Model: "m"})
		if _, err := p.Complete(context.Background(), "x", ""); err == nil {
			t.Errorf("%s: expected error", body)
		}
	}
}

func TestComplete_ContentParts(t *testing.T) {
	body := `{"choices":[{"message":{"content":[{"type":"text","text":"part one, "},{"type":"text","text":"part two"}]}}]}`
	srv := newTestServer(t, http.StatusOK, body, nil)
	p := NewProvider(Options{APIKey: "sk-test", APIBase: srv.URL, Model: "m"})
	text, err := p.Complete(context.Background(), "x", "")
	if err != nil {
		t.Fatal(err)
	}
	if text != "part one, part two" {
		t.Errorf("unexpected text %q", text)
	}
}

// ---- registry / factory -----------------------------------------------------

func TestFindByName(t *testing.T) {
	if s := FindByName("Gemini"); s == nil || s.Name != "gemini" {
		t.Errorf("expected gemini, got %v", s)
	}
	if FindByName("nope") != nil {
		t.Error("expected nil for unknown provider")
	}
}

func TestFindByModel(t *testing.T) {
	tests := []struct{ model, want string }{
		{"gemini-2.0-flash", "gemini"},
		{"openrouter/anthropic/claude", "openrouter"},
		{"gpt-4o", "openai"},
		{"groq/llama3", "groq"},
	}
	for _, tt := range tests {
		s := FindByModel(tt.model)
		if s == nil || s.Name != tt.want {
			t.Errorf("FindByModel(%q) = %v, want %s", tt.model, s, tt.want)
		}
	}
	if FindByModel("mystery-model") != nil {
		t.Error("expected nil")
	}
}

func TestNew_Defaults(t *testing.T) {
	p := New(Params{})
	if p.Name() != "gemini" || p.Model() != "gemini-2.0-flash" {
		t.Errorf("unexpected defaults %s/%s", p.Name(), p.Model())
	}
	if p.apiBase != "https://generativelanguage.googleapis.com/v1beta/openai" {
		t.Errorf("unexpected base %q", p.apiBase)
	}

	p = New(Params{ProviderName: "gemini", Model: "gemini/gemini-1.5-pro"})
	if p.Model() != "gemini-1.5-pro" {
		t.Errorf("prefix not stripped: %q", p.Model())
	}
}
