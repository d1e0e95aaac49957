package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/crystaldolphin/awaybot/internal/aiprompt"
	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/commands"
)

var errNotConfigured = errors.New("not configured")

// requireAI reads the AI settings under the state lock. The lock is released
// before any model call.
func (d *Dispatcher) requireAI() (away.AISettings, error) {
	s := d.state.AISettings()
	if !s.Enabled {
		return s, away.Preconditionf("AI integration is not enabled. Use '%s' first.", d.cmdName(commands.EnableAI))
	}
	return s, nil
}

// complete sends the prompt to the model and appends the formatted reply.
func (d *Dispatcher) complete(ctx context.Context, replies []string, p aiprompt.Prompt) []string {
	if d.ai == nil {
		return append(replies, away.ReplyText(&away.CollaboratorError{Prefix: "AI Error", Err: errNotConfigured}))
	}
	slog.Debug("dispatch: ai request", "kind", p.Kind, "image", p.ImagePath != "")
	text, err := d.ai.Complete(ctx, p.Text, p.ImagePath)
	if err != nil {
		slog.Warn("dispatch: ai request failed", "kind", p.Kind, "err", err)
		return append(replies, away.ReplyText(&away.CollaboratorError{Prefix: "AI Error", Err: err}))
	}
	return append(replies, "AI Analysis: "+text)
}

// language resolves the language token; an unsupported one adds a warning
// reply that is sent before the answer.
func language(tok string, s away.AISettings) (away.Language, []string) {
	lang, warn := aiprompt.ResolveLanguage(tok, s.Language)
	if warn == "" {
		return lang, nil
	}
	return lang, []string{warn}
}

// explainReply analyzes the text of the replied-to message.
func (d *Dispatcher) explainReply(ctx context.Context, msg bus.InboundMessage, args string) []string {
	s, err := d.requireAI()
	if err != nil {
		return []string{away.ReplyText(err)}
	}
	target := msg.ReplyTo()
	if target == nil {
		return []string{fmt.Sprintf("Please reply to a message with '%s' to analyze it.", d.cmdName(commands.AIExplain))}
	}
	if strings.TrimSpace(target.Text) == "" {
		return []string{"No text found in the quoted message to analyze."}
	}

	a := aiprompt.ParseArgs(args)
	lang, replies := language(a.Language, s)
	return d.complete(ctx, replies, aiprompt.Build(aiprompt.Request{
		Kind:     aiprompt.ExplainReply,
		Language: lang,
		Length:   s.Length,
		Context:  a.Context,
		Quoted:   target.Text,
	}))
}

// explainOnly answers free-form context with no replied-to message.
func (d *Dispatcher) explainOnly(ctx context.Context, _ bus.InboundMessage, args string) []string {
	s, err := d.requireAI()
	if err != nil {
		return []string{away.ReplyText(err)}
	}
	a := aiprompt.ParseArgs(args)
	lang, replies := language(a.Language, s)
	if a.Context == "" {
		return append(replies, fmt.Sprintf("Please provide context after the language (e.g., '%s arabic ما هي البرمجة؟').", d.cmdName(commands.AIExplainOnly)))
	}
	return d.complete(ctx, replies, aiprompt.Build(aiprompt.Request{
		Kind:     aiprompt.ExplainOnly,
		Language: lang,
		Length:   s.Length,
		Context:  a.Context,
	}))
}

// explainImage downloads the replied-to image, stores it, and asks the model
// about it.
func (d *Dispatcher) explainImage(ctx context.Context, msg bus.InboundMessage, args string) []string {
	s, err := d.requireAI()
	if err != nil {
		return []string{away.ReplyText(err)}
	}
	target := msg.ReplyTo()
	if target == nil {
		return []string{fmt.Sprintf("Please reply to an image message with '%s <arabic|english> [optional context]' to analyze it.", d.cmdName(commands.AIExplainImage))}
	}
	if !target.HasImage() {
		return []string{"Please reply to a message containing an image to analyze."}
	}

	a := aiprompt.ParseArgs(args)
	lang, replies := language(a.Language, s)

	path, err := d.saveImage(ctx, msg, target.ImageRef)
	if err != nil {
		slog.Warn("dispatch: image download failed", "channel", msg.Channel(), "err", err)
		return append(replies, away.ReplyText(&away.CollaboratorError{Prefix: "Error downloading image", Err: err}))
	}
	slog.Info("dispatch: image saved", "path", path)

	return d.complete(ctx, replies, aiprompt.Build(aiprompt.Request{
		Kind:     aiprompt.ExplainImage,
		Language: lang,
		Length:   s.Length,
		Context:  a.Context,
		Image:    path,
	}))
}

func (d *Dispatcher) saveImage(ctx context.Context, msg bus.InboundMessage, ref string) (string, error) {
	if d.images == nil || d.store == nil {
		return "", errNotConfigured
	}
	data, err := d.images.FetchImage(ctx, msg.Channel(), ref)
	if err != nil {
		return "", err
	}
	return d.store.Save(data, ".jpg")
}

func (d *Dispatcher) cmdName(name string) string { return d.prefix + name }
