package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regsync/internal/core/services"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run recurring imports until interrupted",
	Long: `Starts the scheduler: a full import runs immediately, then repeats on the
configured interval. Stops cleanly on SIGINT/SIGTERM, letting a running import
finish its current window.`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	interval := time.Duration(app.settings.ScheduleHours) * time.Hour
	scheduler := services.NewScheduler(interval, app.importer)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Scheduler running (interval %s). Ctrl-C to stop.\n", scheduler.Interval())

	err = scheduler.Start(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
