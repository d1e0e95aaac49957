package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/awaybot/internal/config"
	"github.com/crystaldolphin/awaybot/internal/media"
	"github.com/crystaldolphin/awaybot/internal/shared/cmdutils"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and the image directory",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := resolvedConfigPath()

	cfg := config.DefaultConfig()
	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		if existing, loadErr := config.Load(cfgPath); loadErr == nil {
			cfg = *existing
		}
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	if err := media.EnsureDir(cfg.ImagesPath()); err != nil {
		return fmt.Errorf("create image directory: %w", err)
	}
	fmt.Printf("✓ Images at %s\n", cfg.ImagesPath())

	fmt.Printf("\n%s awaybot is ready!\n\n", cmdutils.Logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Enable a channel in %s and set its token and owner ID\n", cfgPath)
	fmt.Printf("     (or export %s / %s, %s / %s / %s)\n",
		config.EnvTelegramToken, config.EnvTelegramOwner,
		config.EnvSlackBotToken, config.EnvSlackAppToken, config.EnvSlackOwner)
	fmt.Println("  2. Optional: add an AI key (GEMINI_API_KEY) for the ai-explain commands")
	fmt.Println("  3. Start: awaybot run")
	return nil
}
