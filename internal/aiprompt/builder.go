// Package aiprompt composes the prompts sent to the AI collaborator for the
// ai-explain family of commands.
//
// Every prompt is assembled in the same order: length directive, language
// directive, task directive, then the quoted content.
package aiprompt

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/crystaldolphin/awaybot/internal/away"
)

// Kind selects the prompt template.
type Kind int

const (
	// ExplainReply analyzes the text of the replied-to message.
	ExplainReply Kind = iota
	// ExplainOnly answers free-form context without a replied-to message.
	ExplainOnly
	// ExplainImage analyzes the image of the replied-to message.
	ExplainImage
)

func (k Kind) String() string {
	switch k {
	case ExplainOnly:
		return "explain_only"
	case ExplainImage:
		return "explain_image"
	}
	return "explain_reply"
}

// Prompt is a fully composed AI request.
type Prompt struct {
	Kind      Kind
	Text      string
	ImagePath string // local file for ExplainImage, empty otherwise
}

// Request is the input to Build.
type Request struct {
	Kind     Kind
	Language away.Language
	Length   away.Length
	Context  string // optional owner-supplied context
	Quoted   string // replied-to text for ExplainReply
	Image    string // local image path for ExplainImage
}

// Args are the parsed arguments of an ai-explain command.
type Args struct {
	Language string // raw language token, may be empty
	Context  string
}

// ParseArgs splits "<language> <context...>" into its parts.
func ParseArgs(s string) Args {
	s = strings.TrimSpace(s)
	if s == "" {
		return Args{}
	}
	i := strings.IndexFunc(s, unicode.IsSpace)
	if i < 0 {
		return Args{Language: s}
	}
	return Args{Language: s[:i], Context: strings.TrimSpace(s[i:])}
}

// ResolveLanguage maps a raw token to a supported language. An empty token
// yields fallback. An unsupported token yields English and a warning the
// caller must send before proceeding.
func ResolveLanguage(tok string, fallback away.Language) (away.Language, string) {
	if strings.TrimSpace(tok) == "" {
		if fallback == "" {
			fallback = away.LanguageEnglish
		}
		return fallback, ""
	}
	if l, ok := away.ParseLanguage(tok); ok {
		return l, ""
	}
	names := make([]string, len(away.Languages))
	for i, l := range away.Languages {
		names[i] = string(l)
	}
	warning := fmt.Sprintf("Unsupported language '%s'. Supported languages: %s. Defaulting to English.",
		strings.ToLower(tok), strings.Join(names, ", "))
	return away.LanguageEnglish, warning
}

// Build composes the prompt for r.
func Build(r Request) Prompt {
	length := r.Length
	if _, ok := away.ParseLength(string(length)); !ok {
		length = away.LengthMedium
	}
	lang := r.Language
	if _, ok := away.ParseLanguage(string(lang)); !ok {
		lang = away.LanguageEnglish
	}

	parts := []string{
		fmt.Sprintf("Provide a %s response.", length),
		fmt.Sprintf("Respond in %s.", lang),
	}
	ctx := strings.TrimSpace(r.Context)

	p := Prompt{Kind: r.Kind}
	switch r.Kind {
	case ExplainOnly:
		parts = append(parts, fmt.Sprintf("Provide details based on this context: '%s'", ctx))
	case ExplainImage:
		if ctx != "" {
			parts = append(parts, fmt.Sprintf("Analyze this image and provide details based on this additional context: '%s'", ctx))
		} else {
			parts = append(parts, "Describe and analyze this image.")
		}
		p.ImagePath = r.Image
	default:
		if ctx != "" {
			parts = append(parts,
				fmt.Sprintf("Provide details based on this additional context: '%s'.", ctx),
				fmt.Sprintf("Analyze this message: '%s'", r.Quoted))
		} else {
			parts = append(parts, fmt.Sprintf("Analyze this message and provide details about its content: '%s'", r.Quoted))
		}
	}
	p.Text = strings.Join(parts, " ")
	return p
}
