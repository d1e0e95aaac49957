// Package commands implements the owner's administrative commands. Each
// command is a single transition on away.State plus a confirmation reply;
// invalid input leaves the state untouched and yields a corrective reply.
package commands

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/crystaldolphin/awaybot/internal/away"
)

// DefaultPrefix starts every command keyword.
const DefaultPrefix = "/"

// Command keywords.
const (
	Away               = "away"
	Cancel             = "cancel"
	Status             = "status"
	SetMessage         = "setmessage"
	SetAwayMessage     = "setawaymessage"
	Except             = "except"
	RemoveExcept       = "removeexcept"
	ToggleGroupReplies = "togglegroupreplies"
	EnableAI           = "enable-ai"
	SetAILength        = "setailength"
	Help               = "help"
	HelpAway           = "help-away"
	AIExplain          = "ai-explain"
	AIExplainOnly      = "ai-explain-only"
	AIExplainImage     = "ai-explain-image"
)

// Matcher reports whether text invokes a command and returns the argument
// text that follows the keyword.
type Matcher func(text string) (args string, ok bool)

// Keyword matches prefix+name at the start of text, case-insensitively,
// followed by whitespace or the end of text.
func Keyword(prefix, name string) Matcher {
	head := prefix + name
	return func(text string) (string, bool) {
		text = strings.TrimSpace(text)
		if len(text) < len(head) || !strings.EqualFold(text[:len(head)], head) {
			return "", false
		}
		rest := text[len(head):]
		if rest != "" {
			r, _ := utf8.DecodeRuneInString(rest)
			if !unicode.IsSpace(r) {
				return "", false
			}
		}
		return strings.TrimSpace(rest), true
	}
}

// Handler runs a command with its argument text.
type Handler func(args string) (string, error)

// Command pairs a keyword matcher with its handler.
type Command struct {
	Name   string
	Match  Matcher
	Handle Handler
}

// Processor owns the state-changing commands.
type Processor struct {
	state  *away.State
	clock  away.Clock
	prefix string
}

// NewProcessor creates a Processor. An empty prefix means DefaultPrefix.
func NewProcessor(state *away.State, clock away.Clock, prefix string) *Processor {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	if clock == nil {
		clock = away.SystemClock
	}
	return &Processor{state: state, clock: clock, prefix: prefix}
}

// Prefix returns the keyword prefix.
func (p *Processor) Prefix() string { return p.prefix }

// Commands returns the state commands in matching order.
func (p *Processor) Commands() []Command {
	cmds := []struct {
		name string
		h    Handler
	}{
		{Away, p.Away},
		{Cancel, p.Cancel},
		{Status, p.Status},
		{SetMessage, p.SetMessage},
		{SetAwayMessage, p.SetAwayMessage},
		{Except, p.Except},
		{RemoveExcept, p.RemoveExcept},
		{ToggleGroupReplies, p.ToggleGroupReplies},
		{EnableAI, p.EnableAI},
		{SetAILength, p.SetAILength},
		{HelpAway, p.Help},
		{Help, p.Help},
	}
	out := make([]Command, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, Command{Name: c.name, Match: Keyword(p.prefix, c.name), Handle: c.h})
	}
	return out
}

func (p *Processor) cmd(name string) string { return p.prefix + name }
