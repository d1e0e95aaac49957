package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/crystaldolphin/awaybot/internal/schedule"
	"github.com/crystaldolphin/awaybot/internal/shared/cmdutils"
)

var schedulesCmd = &cobra.Command{
	Use:   "schedules",
	Short: "List recurring away windows and when they fire next",
	RunE:  runSchedules,
}

func runSchedules(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if len(cfg.Schedules) == 0 {
		fmt.Println("No away schedules configured.")
		return nil
	}

	now := time.Now()
	rows := make([][]string, 0, len(cfg.Schedules))
	for i, sc := range cfg.Schedules {
		w, err := schedule.ParseWindow(sc)
		if err != nil {
			rows = append(rows, []string{fmt.Sprintf("#%d", i+1), sc.Cron, sc.Duration, "", "invalid: " + err.Error()})
			continue
		}
		next := w.Next(now)
		rows = append(rows, []string{
			w.Name, w.Expr, w.Duration.String(), w.Location.String(),
			next.Format("2006-01-02 15:04") + " until " + next.Add(w.Duration).Format("2006-01-02 15:04"),
		})
	}
	cmdutils.Table(os.Stdout, []string{"Name", "Cron", "Duration", "Zone", "Next window"}, rows)
	return nil
}
