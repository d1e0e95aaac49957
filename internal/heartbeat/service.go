// Package heartbeat periodically checks the away session and tells the owner
// once its deadline has passed. It never ends the session itself; expiry
// stays lazy and happens on the next message or command.
package heartbeat

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
)

// DefaultInterval is how often the session deadline is checked.
const DefaultInterval = time.Minute

// Snapshotter reads the session without evaluating expiry.
type Snapshotter interface {
	Snapshot() away.Snapshot
}

// Publisher queues outbound messages.
type Publisher interface {
	PublishOutbound(ctx context.Context, msg bus.OutboundMessage) error
}

// Service sends a one-off end-of-session notice to the owner on each channel.
type Service struct {
	state    Snapshotter
	pub      Publisher
	clock    away.Clock
	channels []bus.Channel
	interval time.Duration

	notified time.Time // deadline already reported
}

// NewService creates a Service. interval defaults to DefaultInterval if zero.
func NewService(state Snapshotter, pub Publisher, clock away.Clock, channels []bus.Channel, interval time.Duration) *Service {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if clock == nil {
		clock = away.SystemClock
	}
	return &Service{
		state:    state,
		pub:      pub,
		clock:    clock,
		channels: channels,
		interval: interval,
	}
}

// Start runs the heartbeat loop until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	slog.Info("heartbeat: started", "interval", s.interval, "channels", len(s.channels))

	for {
		select {
		case <-ticker.C:
			s.check(ctx)
		case <-ctx.Done():
			slog.Info("heartbeat: stopped")
			return ctx.Err()
		}
	}
}

func (s *Service) check(ctx context.Context) {
	snap := s.state.Snapshot()
	if !snap.IsAway || s.clock.Now().Before(snap.AwayUntil) || snap.AwayUntil.Equal(s.notified) {
		return
	}
	s.notified = snap.AwayUntil

	text := fmt.Sprintf("Your away session ended at %s. Auto-replies stop with the next message.",
		snap.AwayUntil.Format(time.TimeOnly))
	slog.Info("heartbeat: away deadline passed", "until", snap.AwayUntil.Format(time.DateTime))
	for _, ch := range s.channels {
		if err := s.pub.PublishOutbound(ctx, bus.NewOutboundMessage(ch, bus.OwnerChatID, text)); err != nil {
			slog.Warn("heartbeat: notice dropped", "channel", ch, "err", err)
			return
		}
	}
}
