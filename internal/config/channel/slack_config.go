package channel

// SlackConfig configures the Slack channel (Socket Mode).
type SlackConfig struct {
	Enabled       bool   `json:"enabled" yaml:"enabled"`
	BotToken      string `json:"botToken" yaml:"botToken"`
	AppToken      string `json:"appToken" yaml:"appToken"`
	OwnerUserID   string `json:"ownerUserId" yaml:"ownerUserId"`
	ReplyInThread bool   `json:"replyInThread" yaml:"replyInThread"`
	ReactEmoji    string `json:"reactEmoji,omitempty" yaml:"reactEmoji,omitempty"` // added to commands on receipt; empty disables
	// CommandPrefix replaces away.commandPrefix for owner messages on Slack.
	// Slack intercepts "/away" and "/status" as built-in slash commands, so
	// the default "/" never reaches the bot there.
	CommandPrefix string `json:"commandPrefix" yaml:"commandPrefix"`
}

func DefaultSlackConfig() SlackConfig {
	return SlackConfig{ReplyInThread: true, CommandPrefix: "!"}
}
