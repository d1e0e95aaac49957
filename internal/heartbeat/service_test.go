package heartbeat

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
)

type recorder struct{ sent []bus.OutboundMessage }

func (r *recorder) PublishOutbound(_ context.Context, msg bus.OutboundMessage) error {
	r.sent = append(r.sent, msg)
	return nil
}

func TestCheck_NotifiesOncePerDeadline(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	clock := away.ClockFunc(func() time.Time { return now })
	state := away.NewState(away.Options{})
	state.StartAway(30*time.Minute, now)

	rec := &recorder{}
	svc := NewService(state, rec, clock, []bus.Channel{bus.ChannelTelegram, bus.ChannelSlack}, 0)

	svc.check(context.Background())
	if len(rec.sent) != 0 {
		t.Fatalf("no notice expected before the deadline, got %d", len(rec.sent))
	}

	now = now.Add(31 * time.Minute)
	svc.check(context.Background())
	svc.check(context.Background())
	if len(rec.sent) != 2 {
		t.Fatalf("expected one notice per channel, got %d", len(rec.sent))
	}
	for _, m := range rec.sent {
		if !m.ToOwner() {
			t.Errorf("notice must address the owner, got chat %q", m.ChatID())
		}
		if !strings.Contains(m.Content(), "09:30:00") {
			t.Errorf("unexpected notice %q", m.Content())
		}
	}

	if !state.Snapshot().IsAway {
		t.Error("heartbeat must not end the session")
	}
}

func TestCheck_IdleState(t *testing.T) {
	rec := &recorder{}
	svc := NewService(away.NewState(away.Options{}), rec, nil, []bus.Channel{bus.ChannelTelegram}, time.Second)
	svc.check(context.Background())
	if len(rec.sent) != 0 {
		t.Errorf("unexpected notices %v", rec.sent)
	}
}

func TestStart_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	svc := NewService(away.NewState(away.Options{}), &recorder{}, nil, nil, time.Hour)
	if err := svc.Start(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
