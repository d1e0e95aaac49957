// Package channels provides the chat-platform transports.
package channels

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/crystaldolphin/awaybot/internal/bus"
)

// maxImageBytes bounds a single image download.
const maxImageBytes = 20 << 20

// Channel is one chat transport.
type Channel interface {
	Name() bus.Channel
	// Start connects and publishes inbound messages until ctx is done.
	Start(ctx context.Context) error
	// Send delivers msg; OwnerChatID addresses the owner's direct chat.
	Send(ctx context.Context, msg bus.OutboundMessage) error
	// FetchImage downloads the image behind a ReplyTarget.ImageRef.
	FetchImage(ctx context.Context, ref string) ([]byte, error)
}

// Base holds common state and helper methods shared by all channels.
type Base struct {
	channelName bus.Channel
	b           bus.Bus
	ownerID     string
}

// NewBase creates a Base with the given channel name, bus, and owner ID.
func NewBase(name bus.Channel, b bus.Bus, ownerID string) Base {
	return Base{channelName: name, b: b, ownerID: strings.TrimSpace(ownerID)}
}

// IsOwner reports whether senderID is the configured owner.
func (b *Base) IsOwner(senderID string) bool {
	return b.ownerID != "" && senderID == b.ownerID
}

// HandleMessage marks owner messages and pushes msg to the bus.
func (b *Base) HandleMessage(ctx context.Context, msg bus.InboundMessage) {
	msg.SetFromOwner(b.IsOwner(msg.Sender().ID))
	slog.Debug("channel: inbound", "channel", b.channelName, "chat_id", msg.ChatID(),
		"sender", msg.Sender().Identifier(), "owner", msg.FromOwner(), "preview", msg.Preview())
	if err := b.b.PublishInbound(ctx, msg); err != nil {
		slog.Warn("channel: inbound dropped", "channel", b.channelName, "err", err)
	}
}

// fetchURL downloads url with the given extra headers.
func fetchURL(ctx context.Context, client *http.Client, url string, header http.Header) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, err
	}
	if len(data) > maxImageBytes {
		return nil, fmt.Errorf("image exceeds %d MB", maxImageBytes>>20)
	}
	return data, nil
}

// splitMessage splits content into chunks that fit within maxLen bytes,
// preferring newline breaks, then space breaks, then a hard cut on a rune
// boundary.
func splitMessage(content string, maxLen int) []string {
	if len(content) <= maxLen {
		return []string{content}
	}
	var chunks []string
	for len(content) > 0 {
		if len(content) <= maxLen {
			chunks = append(chunks, content)
			break
		}
		cut := content[:maxLen]
		pos := strings.LastIndex(cut, "\n")
		if pos <= 0 {
			pos = strings.LastIndex(cut, " ")
		}
		if pos <= 0 {
			pos = maxLen
			for pos > 0 && !utf8.RuneStart(content[pos]) {
				pos--
			}
		}
		chunks = append(chunks, content[:pos])
		content = strings.TrimLeft(content[pos:], " \t\n")
	}
	return chunks
}
