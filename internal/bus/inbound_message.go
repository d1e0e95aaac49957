// Package bus defines the message types that flow between chat transports and
// the dispatcher, and the in-process bus that carries them.
package bus

import (
	"github.com/crystaldolphin/awaybot/internal/away"
)

// ReplyTarget is the message an inbound message replies to.
type ReplyTarget struct {
	MessageID string
	Text      string // text or caption, empty when none
	ImageRef  string // transport-specific image reference, empty when none
}

// HasImage reports whether the target carries an image.
func (r *ReplyTarget) HasImage() bool { return r != nil && r.ImageRef != "" }

// InboundMessage is a message received from a chat transport.
type InboundMessage struct {
	channel   Channel
	chatID    string
	messageID string
	sender    away.Sender
	chatKind  ChatKind
	content   string
	fromOwner bool
	replyTo   *ReplyTarget
	metadata  map[string]any
}

// NewInboundMessage creates an InboundMessage. Use the setters to attach
// optional fields.
func NewInboundMessage(channel Channel, chatID, messageID string, sender away.Sender, kind ChatKind, content string) InboundMessage {
	return InboundMessage{
		channel:   channel,
		chatID:    chatID,
		messageID: messageID,
		sender:    sender,
		chatKind:  kind,
		content:   content,
	}
}

func (m InboundMessage) Channel() Channel               { return m.channel }
func (m InboundMessage) ChatID() string                 { return m.chatID }
func (m InboundMessage) MessageID() string              { return m.messageID }
func (m InboundMessage) Sender() away.Sender            { return m.sender }
func (m InboundMessage) ChatKind() ChatKind             { return m.chatKind }
func (m InboundMessage) Content() string                { return m.content }
func (m InboundMessage) FromOwner() bool                { return m.fromOwner }
func (m InboundMessage) ReplyTo() *ReplyTarget          { return m.replyTo }
func (m InboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *InboundMessage) SetFromOwner(v bool)           { m.fromOwner = v }
func (m *InboundMessage) SetReplyTo(r *ReplyTarget)     { m.replyTo = r }
func (m *InboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// IsGroup reports whether the message came from a multi-party chat.
func (m InboundMessage) IsGroup() bool { return m.chatKind == ChatGroup }

// RoutingKey returns "channel:chat_id".
func (m InboundMessage) RoutingKey() string {
	return RoutingKey(m.channel, m.chatID)
}

// Preview returns a short snippet of the message content for logging.
func (m InboundMessage) Preview() string {
	preview := []rune(m.content)
	if len(preview) > 80 {
		return string(preview[:80]) + "..."
	}
	return m.content
}

// Reply builds an outbound message answering m in its own chat. Transport
// metadata (thread, chat type) is carried over.
func (m InboundMessage) Reply(content string) OutboundMessage {
	out := NewOutboundMessage(m.channel, m.chatID, content)
	out.SetReplyTo(m.messageID)
	out.SetMetadata(m.metadata)
	return out
}

// NotifyOwner builds an outbound message to the owner on m's transport.
func (m InboundMessage) NotifyOwner(content string) OutboundMessage {
	return NewOutboundMessage(m.channel, OwnerChatID, content)
}
