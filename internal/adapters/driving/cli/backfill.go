package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	backfillSource string
	backfillLimit  int
)

var backfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Stage attachments for records that are missing them",
	Long: `Finds already-imported records whose document list is empty, re-derives
their qualifying attachment from the upstream system and stages it. Records
that expose no qualifying attachment are skipped.`,
	RunE: runBackfill,
}

func init() {
	backfillCmd.Flags().StringVar(&backfillSource, "source", "", "source to backfill (nris-epd or core)")
	backfillCmd.Flags().IntVar(&backfillLimit, "limit", 0, "maximum candidate records (0 = no limit)")
	backfillCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(backfillCmd)
}

func runBackfill(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := app.backfill.Backfill(ctx, backfillSource, backfillLimit)
	if report != nil {
		cmd.Printf("%s: %d candidates, %d staged, %d skipped\n",
			backfillSource, report.Candidates, report.Staged, report.Skipped)
	}
	return err
}
