// Package config defines the configuration schema for awaybot.
//
// JSON keys use camelCase; YAML files use the same keys.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/crystaldolphin/awaybot/internal/config/autoreply"
	"github.com/crystaldolphin/awaybot/internal/config/channel"
	"github.com/crystaldolphin/awaybot/internal/config/provider"
)

// ScheduleConfig is a recurring away window: when Cron fires, an away
// session of Duration (e.g. "8h", "90m") starts.
type ScheduleConfig struct {
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`
	Cron     string `json:"cron" yaml:"cron"`
	Duration string `json:"duration" yaml:"duration"`
	Timezone string `json:"timezone,omitempty" yaml:"timezone,omitempty"` // IANA name; empty = local
}

// Config is the root configuration object, loaded from ~/.awaybot/config.json.
type Config struct {
	Away      autoreply.AwayConfig    `json:"away" yaml:"away"`
	Provider  provider.ProviderConfig `json:"provider" yaml:"provider"`
	Channels  channel.ChannelsConfig  `json:"channels" yaml:"channels"`
	Schedules []ScheduleConfig        `json:"schedules" yaml:"schedules"`
	ImagesDir string                  `json:"imagesDir" yaml:"imagesDir"`
	MaxImages int                     `json:"maxImages" yaml:"maxImages"` // 0 keeps every image
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Away:      autoreply.DefaultAwayConfig(),
		Provider:  provider.DefaultProviderConfig(),
		Channels:  channel.DefaultChannelsConfig(),
		Schedules: []ScheduleConfig{},
		ImagesDir: "~/.awaybot/images",
		MaxImages: 200,
	}
}

// ImagesPath returns the expanded absolute path of the image directory.
func (c *Config) ImagesPath() string {
	dir := c.ImagesDir
	if dir == "" {
		dir = filepath.Join(DataDir(), "images")
	}
	return expandHome(dir)
}

func expandHome(p string) string {
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, p[2:])
		}
	}
	return p
}
