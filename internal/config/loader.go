package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file values.
const (
	EnvTelegramToken = "TELEGRAM_BOT_TOKEN"
	EnvTelegramOwner = "TELEGRAM_OWNER_ID"
	EnvSlackBotToken = "SLACK_BOT_TOKEN"
	EnvSlackAppToken = "SLACK_APP_TOKEN"
	EnvSlackOwner    = "SLACK_OWNER_ID"
	EnvAPIKey        = "AWAYBOT_API_KEY"
)

// ConfigPath returns the default configuration file path: ~/.awaybot/config.json.
func ConfigPath() string {
	return filepath.Join(DataDir(), "config.json")
}

// DataDir returns the awaybot data directory: ~/.awaybot.
func DataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".awaybot"
	}
	return filepath.Join(home, ".awaybot")
}

// LoadDotEnv loads .env and .env.local from the working directory. Variables
// already set in the environment win.
func LoadDotEnv() {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err != nil {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			slog.Warn("config: failed to load env file", "file", f, "err", err)
		}
	}
}

// Load reads and parses the config file at path, then applies environment
// overrides. If path is empty, ConfigPath() is used.
// On parse failure it logs a warning and returns DefaultConfig().
func Load(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	default:
		if err := decode(path, data, &cfg); err != nil {
			slog.Warn("config: failed to parse, using defaults", "path", path, "err", err)
			cfg = DefaultConfig()
		}
	}

	cfg.applyEnv(os.Getenv)
	return &cfg, nil
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func decode(path string, data []byte, cfg *Config) error {
	if isYAML(path) {
		return yaml.Unmarshal(data, cfg)
	}
	return json.Unmarshal(data, cfg)
}

// applyEnv overlays credentials from the environment.
func (c *Config) applyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&c.Channels.Telegram.Token, EnvTelegramToken)
	set(&c.Channels.Telegram.OwnerID, EnvTelegramOwner)
	set(&c.Channels.Slack.BotToken, EnvSlackBotToken)
	set(&c.Channels.Slack.AppToken, EnvSlackAppToken)
	set(&c.Channels.Slack.OwnerUserID, EnvSlackOwner)

	if c.Provider.APIKey == "" {
		if spec := c.ProviderSpec(); spec != nil && spec.EnvKey != "" {
			set(&c.Provider.APIKey, spec.EnvKey)
		}
	}
	set(&c.Provider.APIKey, EnvAPIKey)
}

// Save writes cfg to path, as YAML for .yaml/.yml paths and indented JSON
// otherwise. If path is empty, ConfigPath() is used.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(cfg)
	} else {
		data, err = json.MarshalIndent(cfg, "", "  ")
		// Append a trailing newline for POSIX compliance.
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return nil
}
