package channel

type ChannelsConfig struct {
	Telegram TelegramConfig `json:"telegram" yaml:"telegram"`
	Slack    SlackConfig    `json:"slack" yaml:"slack"`
}

func DefaultChannelsConfig() ChannelsConfig {
	return ChannelsConfig{
		Telegram: DefaultTelegramConfig(),
		Slack:    DefaultSlackConfig(),
	}
}

// Enabled returns the names of the enabled channels.
func (c ChannelsConfig) Enabled() []string {
	var names []string
	if c.Telegram.Enabled {
		names = append(names, "telegram")
	}
	if c.Slack.Enabled {
		names = append(names, "slack")
	}
	return names
}
