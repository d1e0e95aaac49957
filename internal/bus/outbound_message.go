package bus

// OutboundMessage is a reply to be delivered through a transport.
type OutboundMessage struct {
	channel  Channel        // destination transport
	chatID   string         // destination chat, or OwnerChatID
	content  string         // text to send
	replyTo  string         // message ID to quote (optional)
	metadata map[string]any // transport-specific hints (thread_ts, …)
	markdown bool           // bot-authored text that transports may render
}

func (m OutboundMessage) Channel() Channel               { return m.channel }
func (m OutboundMessage) ChatID() string                 { return m.chatID }
func (m OutboundMessage) Content() string                { return m.content }
func (m OutboundMessage) ReplyTo() string                { return m.replyTo }
func (m OutboundMessage) Metadata() map[string]any       { return m.metadata }
func (m *OutboundMessage) SetReplyTo(id string)          { m.replyTo = id }
func (m *OutboundMessage) SetMetadata(md map[string]any) { m.metadata = md }

// Markdown reports whether Content uses Markdown written by the bot itself.
// Anything else, including the owner's away messages, is sent verbatim.
func (m OutboundMessage) Markdown() bool     { return m.markdown }
func (m *OutboundMessage) SetMarkdown(v bool) { m.markdown = v }

// ToOwner reports whether the message addresses the owner's private chat.
func (m OutboundMessage) ToOwner() bool { return m.chatID == OwnerChatID }

func NewOutboundMessage(channel Channel, chatID, content string) OutboundMessage {
	return OutboundMessage{
		channel: channel,
		chatID:  chatID,
		content: content,
	}
}
