// Package dispatch routes every inbound chat message exactly once: to an
// owner command when it matches the route table, otherwise to the away
// policy.
package dispatch

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/commands"
)

// DefaultWorkers bounds concurrent AI requests.
const DefaultWorkers = 4

// busyReply answers an AI command while every worker is taken.
const busyReply = "The AI is busy with other requests. Please try again in a moment."

// Completer is the AI collaborator.
type Completer interface {
	Complete(ctx context.Context, prompt, imagePath string) (string, error)
}

// ImageFetcher downloads the image a transport-specific ref points at.
type ImageFetcher interface {
	FetchImage(ctx context.Context, channel bus.Channel, ref string) ([]byte, error)
}

// ImageStore persists image bytes and returns a local path.
type ImageStore interface {
	Save(data []byte, ext string) (string, error)
}

// route is one row of the dispatch table.
type route struct {
	name  string
	match commands.Matcher
	run   func(ctx context.Context, msg bus.InboundMessage, args string) []string
	slow  bool // calls an external collaborator; run off the inbound loop
	// markdown marks replies written by the bot (help, model answers);
	// confirmations echo owner text and stay verbatim.
	markdown bool
}

// Dispatcher owns the route table and the away state it mutates.
type Dispatcher struct {
	state   *away.State
	clock   away.Clock
	ai      Completer
	images  ImageFetcher
	store   ImageStore
	prefix  string
	routes  []route
	workers int
}

// Deps are the collaborators a Dispatcher calls into. AI, Images and Store
// may be nil; AI commands then answer with a collaborator error.
type Deps struct {
	State     *away.State
	Clock     away.Clock
	Processor *commands.Processor
	AI        Completer
	Images    ImageFetcher
	Store     ImageStore
	Workers   int
}

// New builds the route table: state commands first, then the AI commands.
func New(d Deps) *Dispatcher {
	if d.Clock == nil {
		d.Clock = away.SystemClock
	}
	if d.Workers <= 0 {
		d.Workers = DefaultWorkers
	}
	proc := d.Processor
	if proc == nil {
		proc = commands.NewProcessor(d.State, d.Clock, "")
	}

	disp := &Dispatcher{
		state:   d.State,
		clock:   d.Clock,
		ai:      d.AI,
		images:  d.Images,
		store:   d.Store,
		prefix:  proc.Prefix(),
		workers: d.Workers,
	}
	for _, c := range proc.Commands() {
		h := c.Handle
		disp.routes = append(disp.routes, route{
			name:     c.Name,
			match:    c.Match,
			markdown: c.Name == commands.Help || c.Name == commands.HelpAway,
			run: func(_ context.Context, _ bus.InboundMessage, args string) []string {
				reply, err := h(args)
				if err != nil {
					return []string{away.ReplyText(err)}
				}
				return []string{reply}
			},
		})
	}
	p := disp.prefix
	disp.routes = append(disp.routes,
		route{name: commands.AIExplainOnly, match: commands.Keyword(p, commands.AIExplainOnly), run: disp.explainOnly, slow: true, markdown: true},
		route{name: commands.AIExplainImage, match: commands.Keyword(p, commands.AIExplainImage), run: disp.explainImage, slow: true, markdown: true},
		route{name: commands.AIExplain, match: commands.Keyword(p, commands.AIExplain), run: disp.explainReply, slow: true, markdown: true},
	)
	return disp
}

// lookup returns the first route matching msg. Only the owner's messages
// are eligible as commands.
func (d *Dispatcher) lookup(msg bus.InboundMessage) (route, string, bool) {
	if !msg.FromOwner() {
		return route{}, "", false
	}
	for _, r := range d.routes {
		if args, ok := r.match(msg.Content()); ok {
			return r, args, true
		}
	}
	return route{}, "", false
}

// Handle processes msg synchronously and returns the messages to deliver.
func (d *Dispatcher) Handle(ctx context.Context, msg bus.InboundMessage) []bus.OutboundMessage {
	r, args, ok := d.lookup(msg)
	if ok {
		return d.runRoute(ctx, msg, r, args)
	}
	return d.applyPolicy(msg)
}

func (d *Dispatcher) runRoute(ctx context.Context, msg bus.InboundMessage, r route, args string) []bus.OutboundMessage {
	slog.Debug("dispatch: command", "command", r.name, "route", msg.RoutingKey(), "message_id", msg.MessageID())
	replies := r.run(ctx, msg, args)
	out := make([]bus.OutboundMessage, 0, len(replies))
	for _, text := range replies {
		m := msg.Reply(text)
		m.SetMarkdown(r.markdown)
		out = append(out, m)
	}
	return out
}

func (d *Dispatcher) applyPolicy(msg bus.InboundMessage) []bus.OutboundMessage {
	// The owner is never an auto-reply target, but expiry is still due.
	if msg.FromOwner() {
		if d.state.Expire(d.clock.Now()) {
			slog.Info("dispatch: away session expired", "route", msg.RoutingKey())
		}
		return nil
	}
	act := d.state.Decide(away.Inbound{Sender: msg.Sender(), Group: msg.IsGroup()}, d.clock.Now())
	switch act.Kind {
	case away.Reply:
		slog.Debug("dispatch: away reply", "sender", act.Sender, "count", act.Count,
			"route", msg.RoutingKey(), "message_id", msg.MessageID())
		return []bus.OutboundMessage{msg.Reply(act.Text)}
	case away.AutoExcept:
		slog.Info("dispatch: sender auto-excepted", "sender", act.Sender, "count", act.Count)
		return []bus.OutboundMessage{msg.NotifyOwner(act.Text)}
	}
	return nil
}

// Run consumes the bus until ctx is cancelled. Messages are evaluated one
// at a time; AI commands finish on a bounded worker pool so a slow model
// never holds up the away policy. When the pool is full the command is
// answered with busyReply instead of waiting for a worker.
func (d *Dispatcher) Run(ctx context.Context, b bus.Bus) error {
	slog.Info("dispatch: loop started", "routes", len(d.routes), "workers", d.workers)

	var g errgroup.Group
	g.SetLimit(d.workers)
	for {
		select {
		case msg := <-b.InboundChan():
			r, args, ok := d.lookup(msg)
			if ok && r.slow {
				started := g.TryGo(func() error {
					d.publish(ctx, b, d.runRoute(ctx, msg, r, args))
					return nil
				})
				if !started {
					slog.Warn("dispatch: ai workers busy", "command", r.name, "route", msg.RoutingKey())
					d.publish(ctx, b, []bus.OutboundMessage{msg.Reply(busyReply)})
				}
				continue
			}
			var out []bus.OutboundMessage
			if ok {
				out = d.runRoute(ctx, msg, r, args)
			} else {
				out = d.applyPolicy(msg)
			}
			d.publish(ctx, b, out)
		case <-ctx.Done():
			slog.Info("dispatch: loop stopping")
			_ = g.Wait()
			return ctx.Err()
		}
	}
}

func (d *Dispatcher) publish(ctx context.Context, b bus.Bus, out []bus.OutboundMessage) {
	for _, m := range out {
		if err := b.PublishOutbound(ctx, m); err != nil {
			slog.Warn("dispatch: outbound dropped", "channel", m.Channel(), "chat_id", m.ChatID(), "err", err)
			return
		}
	}
}
