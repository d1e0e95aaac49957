package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/crystaldolphin/awaybot/internal/container"
	"github.com/crystaldolphin/awaybot/internal/shared/cmdutils"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the away auto-responder",
	RunE:  runAwaybot,
}

func runAwaybot(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	c, err := container.New(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("%s Starting awaybot...\n", cmdutils.Logo)
	fmt.Printf("✓ Channels enabled: %s\n", strings.Join(c.Channels().EnabledChannels(), ", "))
	fmt.Printf("✓ AI provider: %s (%s)\n", c.Provider().Name(), c.Provider().Model())
	if n := len(c.Scheduler().Windows()); n > 0 {
		fmt.Printf("✓ Away schedules: %d\n", n)
	}

	// Graceful shutdown context.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Dispatcher().Run(gctx, c.MessageBus()) })
	g.Go(func() error { return c.Scheduler().Start(gctx) })
	g.Go(func() error { return c.Channels().StartAll(gctx) })
	if hb := c.Heartbeat(); hb != nil {
		g.Go(func() error { return hb.Start(gctx) })
	}

	fmt.Printf("%s awaybot running. Press Ctrl+C to stop.\n", cmdutils.Logo)

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "awaybot error: %v\n", err)
		return err
	}
	fmt.Println("\nShutdown complete.")
	return nil
}
