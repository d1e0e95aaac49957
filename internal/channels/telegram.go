package channels

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/crystaldolphin/awaybot/internal/away"
	"github.com/crystaldolphin/awaybot/internal/bus"
	"github.com/crystaldolphin/awaybot/internal/config/channel"
)

// telegramMaxMessage is the Bot API text limit, minus headroom for HTML tags.
const telegramMaxMessage = 4000

// TelegramChannel implements the Telegram bot via long polling.
type TelegramChannel struct {
	Base
	cfg    *channel.TelegramConfig
	bot    *tgbotapi.BotAPI
	client *http.Client
}

// NewTelegramChannel creates a TelegramChannel.
func NewTelegramChannel(cfg *channel.TelegramConfig, b bus.Bus) *TelegramChannel {
	return &TelegramChannel{
		Base:   NewBase(bus.ChannelTelegram, b, cfg.OwnerID),
		cfg:    cfg,
		client: &http.Client{},
	}
}

func (t *TelegramChannel) Name() bus.Channel { return bus.ChannelTelegram }

func (t *TelegramChannel) Start(ctx context.Context) error {
	if t.cfg.Token == "" {
		return fmt.Errorf("telegram: bot token not configured")
	}
	if t.cfg.Proxy != "" {
		proxy, err := url.Parse(t.cfg.Proxy)
		if err != nil {
			return fmt.Errorf("telegram: invalid proxy: %w", err)
		}
		t.client = &http.Client{Transport: &http.Transport{Proxy: http.ProxyURL(proxy)}}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(t.cfg.Token, tgbotapi.APIEndpoint, t.client)
	if err != nil {
		return fmt.Errorf("telegram: create bot: %w", err)
	}
	t.bot = bot
	slog.Info("telegram: connected", "username", bot.Self.UserName, "owner_configured", t.ownerID != "")

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			msg, ok := telegramInbound(update.Message, bot.Self.ID)
			if !ok {
				continue
			}
			t.HandleMessage(ctx, msg)
		case <-ctx.Done():
			bot.StopReceivingUpdates()
			return ctx.Err()
		}
	}
}

// telegramInbound converts an update message. Messages written by the bot
// itself and updates without a message are dropped.
func telegramInbound(m *tgbotapi.Message, selfID int64) (bus.InboundMessage, bool) {
	if m == nil || m.Chat == nil {
		return bus.InboundMessage{}, false
	}
	if m.From != nil && m.From.ID == selfID {
		return bus.InboundMessage{}, false
	}

	var sender away.Sender
	if m.From != nil {
		sender = away.Sender{
			ID:       strconv.FormatInt(m.From.ID, 10),
			Username: m.From.UserName,
			IsUser:   !m.From.IsBot,
		}
	}

	kind := bus.ChatGroup
	if m.Chat.IsPrivate() {
		kind = bus.ChatDirect
	}

	content := m.Text
	if content == "" {
		content = m.Caption
	}
	msg := bus.NewInboundMessage(bus.ChannelTelegram,
		strconv.FormatInt(m.Chat.ID, 10), strconv.Itoa(m.MessageID),
		sender, kind, content)
	if r := m.ReplyToMessage; r != nil {
		text := r.Text
		if text == "" {
			text = r.Caption
		}
		msg.SetReplyTo(&bus.ReplyTarget{
			MessageID: strconv.Itoa(r.MessageID),
			Text:      text,
			ImageRef:  telegramImage(r),
		})
	}
	return msg, true
}

// telegramImage returns the file ID of the largest photo size, or of an
// image sent as a document.
func telegramImage(m *tgbotapi.Message) string {
	if n := len(m.Photo); n > 0 {
		return m.Photo[n-1].FileID
	}
	if d := m.Document; d != nil && strings.HasPrefix(d.MimeType, "image/") {
		return d.FileID
	}
	return ""
}

// FetchImage downloads a file by its Telegram file ID.
func (t *TelegramChannel) FetchImage(ctx context.Context, fileID string) ([]byte, error) {
	if t.bot == nil {
		return nil, fmt.Errorf("telegram: bot not running")
	}
	link, err := t.bot.GetFileDirectURL(fileID)
	if err != nil {
		return nil, fmt.Errorf("telegram: get file: %w", err)
	}
	return fetchURL(ctx, t.client, link, nil)
}

func (t *TelegramChannel) Send(_ context.Context, msg bus.OutboundMessage) error {
	if t.bot == nil {
		return fmt.Errorf("telegram: bot not running")
	}
	chatID, err := t.resolveChatID(msg)
	if err != nil {
		return err
	}
	if msg.Content() == "" {
		return nil
	}

	var replyMsgID int
	if t.cfg.ReplyToMessage && msg.ReplyTo() != "" {
		replyMsgID, _ = strconv.Atoi(msg.ReplyTo())
	}

	for _, chunk := range splitMessage(msg.Content(), telegramMaxMessage) {
		m := telegramMessage(chatID, chunk, replyMsgID, msg.Markdown())
		if _, err := t.bot.Send(m); err != nil && m.ParseMode != "" {
			// Fallback to plain text.
			_, err = t.bot.Send(telegramMessage(chatID, chunk, replyMsgID, false))
			if err != nil {
				return fmt.Errorf("telegram: send: %w", err)
			}
		} else if err != nil {
			return fmt.Errorf("telegram: send: %w", err)
		}
	}
	return nil
}

// telegramMessage builds one chunk. Only bot-authored Markdown is converted
// to HTML; other text is sent exactly as written.
func telegramMessage(chatID int64, text string, replyTo int, markdown bool) tgbotapi.MessageConfig {
	m := tgbotapi.NewMessage(chatID, text)
	if markdown {
		m.Text = markdownToTelegramHTML(text)
		m.ParseMode = tgbotapi.ModeHTML
	}
	m.ReplyToMessageID = replyTo
	return m
}

func (t *TelegramChannel) resolveChatID(msg bus.OutboundMessage) (int64, error) {
	id := msg.ChatID()
	if msg.ToOwner() {
		if t.ownerID == "" {
			return 0, fmt.Errorf("telegram: owner notification dropped: ownerId not configured")
		}
		id = t.ownerID
	}
	return parseChatID(id)
}

func parseChatID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid chat_id: %s", s)
	}
	return id, nil
}

// ---------------------------------------------------------------------------
// Markdown → Telegram HTML converter
// ---------------------------------------------------------------------------

var (
	reTGCodeBlock  = regexp.MustCompile("(?s)```[\\w]*\\n?([\\s\\S]*?)```")
	reTGInlineCode = regexp.MustCompile("`([^`]+)`")
	reTGHeader     = regexp.MustCompile(`(?m)^#{1,6}\s+(.+)$`)
	reTGLink       = regexp.MustCompile(`\[([^\]]+)\]\(([^)]+)\)`)
	reTGBold       = regexp.MustCompile(`\*\*(.+?)\*\*`)
	reTGStrike     = regexp.MustCompile(`~~(.+?)~~`)
	reTGBullet     = regexp.MustCompile(`(?m)^[-*]\s+`)
)

// markdownToTelegramHTML renders the subset of Markdown used by help text
// and model answers.
func markdownToTelegramHTML(text string) string {
	if text == "" {
		return ""
	}

	var codeBlocks []string
	text = reTGCodeBlock.ReplaceAllStringFunc(text, func(m string) string {
		codeBlocks = append(codeBlocks, reTGCodeBlock.FindStringSubmatch(m)[1])
		return fmt.Sprintf("\x00CB%d\x00", len(codeBlocks)-1)
	})
	var inlineCodes []string
	text = reTGInlineCode.ReplaceAllStringFunc(text, func(m string) string {
		inlineCodes = append(inlineCodes, reTGInlineCode.FindStringSubmatch(m)[1])
		return fmt.Sprintf("\x00IC%d\x00", len(inlineCodes)-1)
	})

	text = reTGHeader.ReplaceAllString(text, "$1")
	text = htmlEscape(text)
	text = reTGLink.ReplaceAllString(text, `<a href="$2">$1</a>`)
	text = reTGBold.ReplaceAllString(text, "<b>$1</b>")
	text = reTGStrike.ReplaceAllString(text, "<s>$1</s>")
	// Bullets go after bold so "**x**" at line start is not a bullet.
	text = reTGBullet.ReplaceAllString(text, "• ")

	for i, code := range inlineCodes {
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00IC%d\x00", i), "<code>"+htmlEscape(code)+"</code>")
	}
	for i, code := range codeBlocks {
		text = strings.ReplaceAll(text, fmt.Sprintf("\x00CB%d\x00", i), "<pre><code>"+htmlEscape(code)+"</code></pre>")
	}
	return text
}

func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	return s
}
