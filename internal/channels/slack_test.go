package channels

import (
	"testing"

	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/config/channel"
)

func newTestSlack() *SlackChannel {
	s := NewSlackChannel(&channel.SlackConfig{OwnerUserID: "UOWNER", ReplyInThread: true}, bus.NewMessageBus(1), "")
	s.botUserID = "UBOT"
	s.botID = "BBOT"
	return s
}

func TestSlackSkip(t *testing.T) {
	s := newTestSlack()
	tests := []struct {
		ev   slackevents.MessageEvent
		skip bool
	}{
		{slackevents.MessageEvent{Channel: "C1", User: "U1", Text: "hi"}, false},
		{slackevents.MessageEvent{Channel: "C1", User: "U1", SubType: "file_share"}, false},
		{slackevents.MessageEvent{Channel: "C1", User: "U1", SubType: "message_changed"}, true},
		{slackevents.MessageEvent{Channel: "C1", User: "UBOT"}, true},
		{slackevents.MessageEvent{Channel: "C1", BotID: "BBOT", SubType: "bot_message"}, true},
		{slackevents.MessageEvent{Channel: "C1", BotID: "BOTHER", SubType: "bot_message"}, false},
		{slackevents.MessageEvent{User: "U1"}, true},
	}
	for i, tt := range tests {
		if got := s.skip(&tt.ev); got != tt.skip {
			t.Errorf("case %d: skip = %v, want %v", i, got, tt.skip)
		}
	}
}

func TestSlackInbound(t *testing.T) {
	ev := &slackevents.MessageEvent{
		Channel:         "C1",
		ChannelType:     "channel",
		User:            "UOWNER",
		Text:            "/ai-explain",
		TimeStamp:       "200.1",
		ThreadTimeStamp: "100.1",
	}
	parent := &slackgo.Message{Msg: slackgo.Msg{
		Timestamp: "100.1",
		Text:      "what does this mean",
		Files: []slackgo.File{
			{Mimetype: "application/pdf", URLPrivateDownload: "https://files/doc"},
			{Mimetype: "image/png", URLPrivateDownload: "https://files/img"},
		},
	}}
	msg := slackInbound(ev, away.Sender{ID: "UOWNER", Username: "boss", IsUser: true}, parent)

	if !msg.IsGroup() || msg.ChatID() != "C1" || msg.MessageID() != "200.1" {
		t.Errorf("unexpected routing %s/%s", msg.ChatID(), msg.MessageID())
	}
	r := msg.ReplyTo()
	if r == nil || r.Text != "what does this mean" || r.ImageRef != "https://files/img" {
		t.Errorf("unexpected reply target %+v", r)
	}
	if msg.Metadata()["thread_ts"] != "100.1" {
		t.Errorf("unexpected metadata %v", msg.Metadata())
	}

	dm := slackInbound(&slackevents.MessageEvent{Channel: "D1", ChannelType: "im", User: "U2", TimeStamp: "1.0"}, away.Sender{ID: "U2", IsUser: true}, nil)
	if dm.IsGroup() || dm.ReplyTo() != nil {
		t.Error("im channel is a direct chat without reply target")
	}
}

func TestSlackThreadFor(t *testing.T) {
	s := newTestSlack()

	in := slackInbound(&slackevents.MessageEvent{Channel: "C1", ChannelType: "channel", User: "U2", TimeStamp: "5.0"}, away.Sender{ID: "U2", IsUser: true}, nil)
	if ts := s.threadFor(in.Reply("away")); ts != "5.0" {
		t.Errorf("channel reply should thread on the message, got %q", ts)
	}
	if ts := s.threadFor(in.NotifyOwner("note")); ts != "" {
		t.Errorf("owner notifications are not threaded, got %q", ts)
	}

	dm := slackInbound(&slackevents.MessageEvent{Channel: "D1", ChannelType: "im", User: "U2", TimeStamp: "6.0"}, away.Sender{ID: "U2", IsUser: true}, nil)
	if ts := s.threadFor(dm.Reply("away")); ts != "" {
		t.Errorf("DM replies are flat, got %q", ts)
	}

	s.cfg.ReplyInThread = false
	if ts := s.threadFor(in.Reply("away")); ts != "" {
		t.Errorf("threading disabled, got %q", ts)
	}
}

func TestSlackCommandText(t *testing.T) {
	tests := []struct{ in, slackPrefix, want string }{
		{"!away 2h", "!", "/away 2h"},
		{"  !status", "!", "/status"},
		{"hello!", "!", "hello!"},
		{"/away 2h", "!", "/away 2h"},
		{"!away 2h", "", "!away 2h"},
		{"/away 2h", "/", "/away 2h"},
	}
	for _, tt := range tests {
		if got := slackCommandText(tt.in, tt.slackPrefix, "/"); got != tt.want {
			t.Errorf("slackCommandText(%q, %q) = %q, want %q", tt.in, tt.slackPrefix, got, tt.want)
		}
	}
}
