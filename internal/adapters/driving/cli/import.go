package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regsync/internal/core/domain"
)

var importSource string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Run one import pass",
	Long: `Imports records from the configured sources. With --source only that
source is imported; otherwise every source runs in turn. Per-record failures
are reported through the task audit record and do not abort the run.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importSource, "source", "", "import a single source (nris-epd or core)")
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if importSource != "" {
		audit, err := app.importer.Run(ctx, importSource)
		if audit != nil {
			printAudit(cmd, audit)
		}
		return err
	}

	audits, err := app.importer.RunAll(ctx)
	for i := range audits {
		printAudit(cmd, &audits[i])
	}
	return err
}

func printAudit(cmd *cobra.Command, audit *domain.TaskAuditRecord) {
	cmd.Printf("%s: %s (%d/%d records", audit.Source, audit.Status, audit.ItemsProcessed, audit.ItemTotal)
	if len(audit.RecordErrors) > 0 {
		cmd.Printf(", %d errors", len(audit.RecordErrors))
	}
	cmd.Println(")")
	if audit.Message != "" {
		cmd.Println("  " + audit.Message)
	}
	for _, re := range audit.RecordErrors {
		cmd.Println("  " + fmt.Sprintf("record %s: %s", re.ExternalID, re.Message))
	}
}
