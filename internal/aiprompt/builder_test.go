package aiprompt

import (
	"strings"
	"testing"

	"github.com/crystaldolphin/awaybot/internal/away"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		in   string
		want Args
	}{
		{"", Args{}},
		{"arabic", Args{Language: "arabic"}},
		{"english  Tell me more ", Args{Language: "english", Context: "Tell me more"}},
		{"arabic ما هي البرمجة؟", Args{Language: "arabic", Context: "ما هي البرمجة؟"}},
	}
	for _, tt := range tests {
		if got := ParseArgs(tt.in); got != tt.want {
			t.Errorf("ParseArgs(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestResolveLanguage(t *testing.T) {
	l, warn := ResolveLanguage("", away.LanguageEnglish)
	if l != away.LanguageEnglish || warn != "" {
		t.Errorf("empty token: got %q %q", l, warn)
	}
	l, warn = ResolveLanguage("ARABIC", away.LanguageEnglish)
	if l != away.LanguageArabic || warn != "" {
		t.Errorf("arabic: got %q %q", l, warn)
	}
	l, warn = ResolveLanguage("French", away.LanguageArabic)
	if l != away.LanguageEnglish {
		t.Errorf("unsupported should fall back to english, got %q", l)
	}
	want := "Unsupported language 'french'. Supported languages: arabic, english. Defaulting to English."
	if warn != want {
		t.Errorf("warning mismatch:\n got %q\nwant %q", warn, want)
	}
}

func TestBuild_ExplainReply(t *testing.T) {
	p := Build(Request{Kind: ExplainReply, Language: away.LanguageEnglish, Length: away.LengthShort, Quoted: "hi there"})
	want := "Provide a short response. Respond in english. Analyze this message and provide details about its content: 'hi there'"
	if p.Text != want {
		t.Errorf("got  %q\nwant %q", p.Text, want)
	}
	if p.ImagePath != "" {
		t.Error("text prompt must not carry an image")
	}
}

func TestBuild_ExplainReplyWithContextQuotesLast(t *testing.T) {
	p := Build(Request{Kind: ExplainReply, Language: away.LanguageArabic, Length: away.LengthLong, Context: "Tell me more", Quoted: "the quote"})
	if !strings.HasPrefix(p.Text, "Provide a long response. Respond in arabic. ") {
		t.Errorf("directives out of order: %q", p.Text)
	}
	if !strings.HasSuffix(p.Text, "'the quote'") {
		t.Errorf("quoted content must come last: %q", p.Text)
	}
	if !strings.Contains(p.Text, "'Tell me more'") {
		t.Errorf("context missing: %q", p.Text)
	}
}

func TestBuild_ExplainOnly(t *testing.T) {
	p := Build(Request{Kind: ExplainOnly, Language: away.LanguageEnglish, Length: away.LengthMedium, Context: "What is Go?"})
	want := "Provide a medium response. Respond in english. Provide details based on this context: 'What is Go?'"
	if p.Text != want {
		t.Errorf("got  %q\nwant %q", p.Text, want)
	}
}

func TestBuild_ExplainImage(t *testing.T) {
	p := Build(Request{Kind: ExplainImage, Language: away.LanguageEnglish, Length: away.LengthMedium, Image: "/tmp/a.jpg"})
	if p.ImagePath != "/tmp/a.jpg" {
		t.Errorf("expected image path, got %q", p.ImagePath)
	}
	if !strings.HasSuffix(p.Text, "Describe and analyze this image.") {
		t.Errorf("unexpected image prompt: %q", p.Text)
	}

	p = Build(Request{Kind: ExplainImage, Language: away.LanguageEnglish, Length: away.LengthMedium, Image: "/tmp/a.jpg", Context: "What is this?"})
	if !strings.Contains(p.Text, "additional context: 'What is this?'") {
		t.Errorf("expected context in image prompt: %q", p.Text)
	}
}

func TestBuild_InvalidSettingsFallBack(t *testing.T) {
	p := Build(Request{Kind: ExplainOnly, Language: "klingon", Length: "huge", Context: "x"})
	if !strings.HasPrefix(p.Text, "Provide a medium response. Respond in english.") {
		t.Errorf("expected fallbacks, got %q", p.Text)
	}
}

func TestKind_String(t *testing.T) {
	if ExplainReply.String() != "explain_reply" || ExplainOnly.String() != "explain_only" || ExplainImage.String() != "explain_image" {
		t.Error("unexpected kind names")
	}
}
