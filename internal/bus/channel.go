package bus

// Channel names a chat transport.
type Channel string

const (
	ChannelTelegram Channel = "telegram"
	ChannelSlack    Channel = "slack"
)

// OwnerChatID addresses the owner's private chat on whichever transport
// carries the message. Channels resolve it to their configured owner.
const OwnerChatID = "@owner"

// ChatKind distinguishes one-to-one chats from multi-party ones.
type ChatKind string

const (
	ChatDirect ChatKind = "direct"
	ChatGroup  ChatKind = "group"
)
