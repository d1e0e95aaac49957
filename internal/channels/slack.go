package channels

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	slackgo "github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"
	"github.com/slack-go/slack/socketmode"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/commands"
	"github.com/crystaldolphin/awaybot/internal/config/channel"
	"github.com/crystaldolphin/awaybot/internal/shared/stringutils"
)

// SlackChannel implements Slack via Socket Mode.
type SlackChannel struct {
	Base
	cfg       *channel.SlackConfig
	webClient *slackgo.Client
	smClient  *socketmode.Client
	botUserID string
	botID     string

	cmdPrefix string // dispatcher command prefix

	mu      sync.Mutex
	users   map[string]away.Sender // user ID -> sender, cached
	ownerDM string
}

// NewSlackChannel creates a SlackChannel. cmdPrefix is the dispatcher's
// command prefix that cfg.CommandPrefix is rewritten to.
func NewSlackChannel(cfg *channel.SlackConfig, b bus.Bus, cmdPrefix string) *SlackChannel {
	return &SlackChannel{
		Base:      NewBase(bus.ChannelSlack, b, cfg.OwnerUserID),
		cfg:       cfg,
		cmdPrefix: stringutils.OrDefault(cmdPrefix, commands.DefaultPrefix),
		users:     make(map[string]away.Sender),
	}
}

func (s *SlackChannel) Name() bus.Channel { return bus.ChannelSlack }

func (s *SlackChannel) Start(ctx context.Context) error {
	if s.cfg.BotToken == "" || s.cfg.AppToken == "" {
		return fmt.Errorf("slack: bot/app token not configured")
	}

	s.webClient = slackgo.New(s.cfg.BotToken,
		slackgo.OptionAppLevelToken(s.cfg.AppToken))

	resp, err := s.webClient.AuthTestContext(ctx)
	if err != nil {
		return fmt.Errorf("slack: auth test: %w", err)
	}
	s.botUserID = resp.UserID
	s.botID = resp.BotID
	slog.Info("slack: connected", "bot_user_id", s.botUserID, "team", resp.Team)

	s.smClient = socketmode.New(s.webClient)

	go s.smClient.RunContext(ctx) //nolint:errcheck

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case evt, ok := <-s.smClient.Events:
			if !ok {
				return nil
			}
			s.handleEvent(ctx, evt)
		}
	}
}

func (s *SlackChannel) handleEvent(ctx context.Context, evt socketmode.Event) {
	switch evt.Type {
	case socketmode.EventTypeConnecting:
		slog.Debug("slack: connecting")
	case socketmode.EventTypeConnectionError:
		slog.Warn("slack: connection error", "data", evt.Data)
	case socketmode.EventTypeEventsAPI:
		if evt.Request != nil {
			s.smClient.Ack(*evt.Request)
		}
		cb, ok := evt.Data.(slackevents.EventsAPIEvent)
		if !ok {
			return
		}
		ev, ok := cb.InnerEvent.Data.(*slackevents.MessageEvent)
		if !ok || s.skip(ev) {
			return
		}
		s.handleMessage(ctx, ev)
	}
}

// skip filters edits, deletions, joins and the bot's own posts.
func (s *SlackChannel) skip(ev *slackevents.MessageEvent) bool {
	switch ev.SubType {
	case "", "file_share", "thread_broadcast", "bot_message":
	default:
		return true
	}
	if ev.Channel == "" {
		return true
	}
	if ev.User != "" && ev.User == s.botUserID {
		return true
	}
	return ev.BotID != "" && ev.BotID == s.botID
}

func (s *SlackChannel) handleMessage(ctx context.Context, ev *slackevents.MessageEvent) {
	sender := s.lookupSender(ctx, ev)

	var parent *slackgo.Message
	if ev.ThreadTimeStamp != "" && ev.ThreadTimeStamp != ev.TimeStamp {
		parent = s.threadParent(ctx, ev.Channel, ev.ThreadTimeStamp)
	}

	if s.IsOwner(sender.ID) {
		e := *ev
		e.Text = slackCommandText(ev.Text, s.cfg.CommandPrefix, s.cmdPrefix)
		ev = &e
	}
	msg := slackInbound(ev, sender, parent)
	if s.IsOwner(sender.ID) && s.cfg.ReactEmoji != "" && ev.TimeStamp != "" {
		// Best-effort receipt for owner commands.
		_ = s.webClient.AddReactionContext(ctx, s.cfg.ReactEmoji, slackgo.ItemRef{
			Channel:   ev.Channel,
			Timestamp: ev.TimeStamp,
		})
	}
	s.HandleMessage(ctx, msg)
}

// slackCommandText rewrites a leading Slack command prefix to prefix.
func slackCommandText(text, slackPrefix, prefix string) string {
	t := strings.TrimLeftFunc(text, unicode.IsSpace)
	if slackPrefix == "" || slackPrefix == prefix || !strings.HasPrefix(t, slackPrefix) {
		return text
	}
	return prefix + t[len(slackPrefix):]
}

// slackInbound converts a message event. parent is the thread root the
// message replies to, or nil.
func slackInbound(ev *slackevents.MessageEvent, sender away.Sender, parent *slackgo.Message) bus.InboundMessage {
	kind := bus.ChatGroup
	if ev.ChannelType == "im" {
		kind = bus.ChatDirect
	}
	msg := bus.NewInboundMessage(bus.ChannelSlack, ev.Channel, ev.TimeStamp, sender, kind, ev.Text)

	threadTS := ev.ThreadTimeStamp
	if threadTS == "" {
		threadTS = ev.TimeStamp
	}
	msg.SetMetadata(map[string]any{"thread_ts": threadTS, "channel_type": ev.ChannelType})

	if parent != nil {
		msg.SetReplyTo(&bus.ReplyTarget{
			MessageID: parent.Timestamp,
			Text:      parent.Text,
			ImageRef:  slackImage(parent.Files),
		})
	}
	return msg
}

// slackImage returns the private download URL of the first image file.
func slackImage(files []slackgo.File) string {
	for _, f := range files {
		if !strings.HasPrefix(f.Mimetype, "image/") {
			continue
		}
		if f.URLPrivateDownload != "" {
			return f.URLPrivateDownload
		}
		return f.URLPrivate
	}
	return ""
}

// lookupSender resolves handle and bot status, caching per user.
func (s *SlackChannel) lookupSender(ctx context.Context, ev *slackevents.MessageEvent) away.Sender {
	if ev.User == "" {
		// Integrations and workflow posts carry only a bot ID.
		return away.Sender{ID: ev.BotID, Username: ev.Username}
	}
	s.mu.Lock()
	cached, ok := s.users[ev.User]
	s.mu.Unlock()
	if ok {
		return cached
	}

	sender := away.Sender{ID: ev.User, IsUser: ev.BotID == ""}
	u, err := s.webClient.GetUserInfoContext(ctx, ev.User)
	if err != nil {
		slog.Warn("slack: user lookup failed", "user", ev.User, "err", err)
		return sender
	}
	sender.Username = u.Name
	sender.Phone = u.Profile.Phone
	sender.IsUser = !u.IsBot && !u.Deleted && u.ID != "USLACKBOT"

	s.mu.Lock()
	s.users[ev.User] = sender
	s.mu.Unlock()
	return sender
}

func (s *SlackChannel) threadParent(ctx context.Context, channelID, threadTS string) *slackgo.Message {
	msgs, _, _, err := s.webClient.GetConversationRepliesContext(ctx, &slackgo.GetConversationRepliesParameters{
		ChannelID: channelID,
		Timestamp: threadTS,
		Limit:     1,
	})
	if err != nil || len(msgs) == 0 {
		if err != nil {
			slog.Warn("slack: thread lookup failed", "channel", channelID, "err", err)
		}
		return nil
	}
	return &msgs[0]
}

// FetchImage downloads a private file URL with the bot token.
func (s *SlackChannel) FetchImage(ctx context.Context, url string) ([]byte, error) {
	if s.webClient == nil {
		return nil, fmt.Errorf("slack: not connected")
	}
	var buf bytes.Buffer
	if err := s.webClient.GetFileContext(ctx, url, &buf); err != nil {
		return nil, fmt.Errorf("slack: download file: %w", err)
	}
	if buf.Len() > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d MB", maxImageBytes>>20)
	}
	return buf.Bytes(), nil
}

func (s *SlackChannel) Send(ctx context.Context, msg bus.OutboundMessage) error {
	if s.webClient == nil {
		return fmt.Errorf("slack: not connected")
	}
	chatID := msg.ChatID()
	if msg.ToOwner() {
		dm, err := s.openOwnerDM(ctx)
		if err != nil {
			return err
		}
		chatID = dm
	}

	options := []slackgo.MsgOption{slackgo.MsgOptionText(msg.Content(), false)}
	if !msg.Markdown() {
		// Away messages are the owner's own text; keep them verbatim.
		options = append(options, slackgo.MsgOptionDisableMarkdown())
	}
	if ts := s.threadFor(msg); ts != "" {
		options = append(options, slackgo.MsgOptionTS(ts))
	}
	_, _, err := s.webClient.PostMessageContext(ctx, chatID, options...)
	return err
}

// threadFor returns the thread to post into: replies in channels go to the
// originating thread, direct messages and owner notifications stay flat.
func (s *SlackChannel) threadFor(msg bus.OutboundMessage) string {
	if !s.cfg.ReplyInThread || msg.ToOwner() {
		return ""
	}
	if ct, _ := msg.Metadata()["channel_type"].(string); ct == "im" {
		return ""
	}
	if ts, _ := msg.Metadata()["thread_ts"].(string); ts != "" {
		return ts
	}
	return msg.ReplyTo()
}

func (s *SlackChannel) openOwnerDM(ctx context.Context) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ownerDM != "" {
		return s.ownerDM, nil
	}
	if s.ownerID == "" {
		return "", fmt.Errorf("slack: owner notification dropped: ownerUserId not configured")
	}
	ch, _, _, err := s.webClient.OpenConversationContext(ctx, &slackgo.OpenConversationParameters{
		Users: []string{s.ownerID},
	})
	if err != nil {
		return "", fmt.Errorf("slack: open owner DM: %w", err)
	}
	s.ownerDM = ch.ID
	return s.ownerDM, nil
}
