package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/awaybot/internal/shared/cmdutils"
	"github.com/crystaldolphin/awaybot/internal/shared/stringutils"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show awaybot configuration status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	fmt.Printf("%s awaybot Status\n\n", cmdutils.Logo)

	_, statErr := os.Stat(cfgPath)
	fmt.Printf("Config:    %s %s\n", cfgPath, cmdutils.Mark(statErr == nil))

	cfg, err := loadConfig()
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	_, imgErr := os.Stat(cfg.ImagesPath())
	fmt.Printf("Images:    %s %s\n", cfg.ImagesPath(), cmdutils.Mark(imgErr == nil))

	spec := cfg.ProviderSpec()
	model := cfg.Provider.Model
	if model == "" {
		model = spec.DefaultModel
	}
	key := cmdutils.SecretHint(cfg.Provider.APIKey)
	if spec.IsLocal {
		key = "(not required)"
	}
	fmt.Printf("Provider:  %s (%s), API key %s\n\n", spec.Label(), model, key)

	fmt.Println("Channels:")
	tg, sl := cfg.Channels.Telegram, cfg.Channels.Slack
	cmdutils.Table(os.Stdout, []string{"Channel", "Enabled", "Token", "Owner"}, [][]string{
		{"Telegram", cmdutils.Mark(tg.Enabled), cmdutils.SecretHint(tg.Token), stringutils.OrDefault(tg.OwnerID, "(not set)")},
		{"Slack", cmdutils.Mark(sl.Enabled), cmdutils.SecretHint(sl.BotToken), stringutils.OrDefault(sl.OwnerUserID, "(not set)")},
	})

	fmt.Printf("\nAway defaults: group replies %s, AI %s (%s), prefix %q, %d schedule(s)\n",
		cmdutils.Mark(cfg.Away.GroupReplies), cmdutils.Mark(cfg.Away.AIEnabled),
		cfg.Away.AILength, cfg.Away.CommandPrefix, len(cfg.Schedules))

	if err := cfg.Validate(); err != nil {
		fmt.Printf("\n%s not ready to run:\n%v\n", cmdutils.Mark(false), err)
	}
	return nil
}

