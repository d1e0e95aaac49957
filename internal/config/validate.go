package config

import (
	"errors"
	"fmt"
)

// ErrNoChannels is returned by Validate when no transport is enabled.
var ErrNoChannels = errors.New("no channels enabled")

// Validate reports the bootstrap problems that make `run` pointless: no
// enabled channel, or an enabled channel without its credentials or owner.
func (c *Config) Validate() error {
	if len(c.Channels.Enabled()) == 0 {
		return fmt.Errorf("%w: enable channels.telegram or channels.slack in %s", ErrNoChannels, ConfigPath())
	}
	var errs []error
	if t := c.Channels.Telegram; t.Enabled {
		if t.Token == "" {
			errs = append(errs, fmt.Errorf("telegram: token is required (or set %s)", EnvTelegramToken))
		}
		if t.OwnerID == "" {
			errs = append(errs, fmt.Errorf("telegram: ownerId is required (or set %s)", EnvTelegramOwner))
		}
	}
	if s := c.Channels.Slack; s.Enabled {
		if s.BotToken == "" || s.AppToken == "" {
			errs = append(errs, fmt.Errorf("slack: botToken and appToken are required (or set %s and %s)", EnvSlackBotToken, EnvSlackAppToken))
		}
		if s.OwnerUserID == "" {
			errs = append(errs, fmt.Errorf("slack: ownerUserId is required (or set %s)", EnvSlackOwner))
		}
	}
	return errors.Join(errs...)
}
