package channels

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/config"
)

// Manager owns all enabled channels and routes outbound messages.
type Manager struct {
	channels map[bus.Channel]Channel
	b        bus.Bus
}

// NewManager creates a Manager and initialises all enabled channels.
func NewManager(cfg *config.Config, b bus.Bus) *Manager {
	m := &Manager{
		channels: make(map[bus.Channel]Channel),
		b:        b,
	}
	if cfg.Channels.Telegram.Enabled {
		m.Register(NewTelegramChannel(&cfg.Channels.Telegram, b))
	}
	if cfg.Channels.Slack.Enabled {
		m.Register(NewSlackChannel(&cfg.Channels.Slack, b, cfg.Away.CommandPrefix))
	}
	return m
}

// Register adds ch, replacing any channel with the same name.
func (m *Manager) Register(ch Channel) {
	m.channels[ch.Name()] = ch
	slog.Info("channel enabled", "name", ch.Name())
}

// EnabledChannels returns the names of all enabled channels, sorted.
func (m *Manager) EnabledChannels() []string {
	names := make([]string, 0, len(m.channels))
	for n := range m.channels {
		names = append(names, string(n))
	}
	sort.Strings(names)
	return names
}

// StartAll starts all channels concurrently and dispatches outbound messages.
// A channel that fails is logged; the others keep running. Blocks until ctx
// is cancelled, or returns an error once every channel has failed.
func (m *Manager) StartAll(ctx context.Context) error {
	if len(m.channels) == 0 {
		return fmt.Errorf("no channels enabled")
	}

	go m.dispatchOutbound(ctx)

	failed := make(chan error, len(m.channels))
	for name, ch := range m.channels {
		go func(n bus.Channel, c Channel) {
			slog.Info("starting channel", "name", n)
			err := c.Start(ctx)
			if ctx.Err() != nil {
				return
			}
			if err == nil {
				err = errors.New("stopped unexpectedly")
			}
			slog.Error("channel exited with error", "name", n, "err", err)
			failed <- fmt.Errorf("%s: %w", n, err)
		}(name, ch)
	}

	var errs []error
	for {
		select {
		case err := <-failed:
			errs = append(errs, err)
			if len(errs) == len(m.channels) {
				return fmt.Errorf("all channels failed: %w", errors.Join(errs...))
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// FetchImage downloads an image through the channel that produced ref.
func (m *Manager) FetchImage(ctx context.Context, channel bus.Channel, ref string) ([]byte, error) {
	ch, ok := m.channels[channel]
	if !ok {
		return nil, fmt.Errorf("unknown channel %q", channel)
	}
	return ch.FetchImage(ctx, ref)
}

// dispatchOutbound reads from the outbound queue and routes each message to
// the appropriate channel's Send method. Failures are logged, not retried.
func (m *Manager) dispatchOutbound(ctx context.Context) {
	for {
		select {
		case msg := <-m.b.OutboundChan():
			m.deliver(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func (m *Manager) deliver(ctx context.Context, msg bus.OutboundMessage) {
	ch, ok := m.channels[msg.Channel()]
	if !ok {
		slog.Debug("unknown channel for outbound message", "channel", msg.Channel())
		return
	}
	if err := ch.Send(ctx, msg); err != nil {
		slog.Error("send error", "channel", msg.Channel(), "chat_id", msg.ChatID(), "err", err)
	}
}
