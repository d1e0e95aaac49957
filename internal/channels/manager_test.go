package channels

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/config"
)

type fakeChannel struct {
	name bus.Channel

	mu      sync.Mutex
	sent    []bus.OutboundMessage
	started chan struct{}
}

func newFakeChannel(name bus.Channel) *fakeChannel {
	return &fakeChannel{name: name, started: make(chan struct{})}
}

func (f *fakeChannel) Name() bus.Channel { return f.name }

func (f *fakeChannel) Start(ctx context.Context) error {
	close(f.started)
	<-ctx.Done()
	return ctx.Err()
}

func (f *fakeChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, msg)
	return nil
}

func (f *fakeChannel) FetchImage(_ context.Context, ref string) ([]byte, error) {
	if ref == "missing" {
		return nil, errors.New("not found")
	}
	return []byte("img:" + ref), nil
}

func (f *fakeChannel) sentCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

func TestNewManager_EnabledChannels(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Channels.Telegram.Enabled = true
	cfg.Channels.Slack.Enabled = true
	m := NewManager(&cfg, bus.NewMessageBus(1))
	got := m.EnabledChannels()
	if len(got) != 2 || got[0] != "slack" || got[1] != "telegram" {
		t.Errorf("unexpected channels %v", got)
	}

	if err := NewManager(&config.Config{}, bus.NewMessageBus(1)).StartAll(context.Background()); err == nil {
		t.Error("expected error with no channels")
	}
}

func TestManager_RoutesOutbound(t *testing.T) {
	b := bus.NewMessageBus(4)
	m := NewManager(&config.Config{}, b)
	tg := newFakeChannel(bus.ChannelTelegram)
	sl := newFakeChannel(bus.ChannelSlack)
	m.Register(tg)
	m.Register(sl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.StartAll(ctx) }()
	<-tg.started
	<-sl.started

	_ = b.PublishOutbound(ctx, bus.NewOutboundMessage(bus.ChannelSlack, "C1", "hi"))
	_ = b.PublishOutbound(ctx, bus.NewOutboundMessage(bus.ChannelTelegram, bus.OwnerChatID, "note"))
	_ = b.PublishOutbound(ctx, bus.NewOutboundMessage("unknown", "x", "lost"))

	deadline := time.Now().Add(2 * time.Second)
	for (tg.sentCount() < 1 || sl.sentCount() < 1) && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if tg.sentCount() != 1 || sl.sentCount() != 1 {
		t.Fatalf("expected one message per channel, got telegram=%d slack=%d", tg.sentCount(), sl.sentCount())
	}
	if !tg.sent[0].ToOwner() {
		t.Error("owner notification routed wrong")
	}
}

func TestManager_FetchImage(t *testing.T) {
	m := NewManager(&config.Config{}, bus.NewMessageBus(1))
	m.Register(newFakeChannel(bus.ChannelTelegram))

	data, err := m.FetchImage(context.Background(), bus.ChannelTelegram, "f1")
	if err != nil || string(data) != "img:f1" {
		t.Errorf("unexpected %q %v", data, err)
	}
	if _, err := m.FetchImage(context.Background(), bus.ChannelSlack, "f1"); err == nil {
		t.Error("expected error for unregistered channel")
	}
}

type brokenChannel struct{ fakeChannel }

func (b *brokenChannel) Start(context.Context) error { return errors.New("unauthorized") }

func TestManager_StartAllFailsWhenEveryChannelFails(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewManager(&cfg, bus.NewMessageBus(1))
	m.Register(&brokenChannel{fakeChannel{name: bus.ChannelTelegram}})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := m.StartAll(ctx)
	if err == nil || errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected channel failure, got %v", err)
	}
}

func TestManager_StartAllWithoutChannels(t *testing.T) {
	cfg := config.DefaultConfig()
	m := NewManager(&cfg, bus.NewMessageBus(1))
	if err := m.StartAll(context.Background()); err == nil {
		t.Fatal("expected error with no channels")
	}
}
