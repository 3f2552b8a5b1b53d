package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var statusLimit int

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show recent import runs",
	RunE:  runStatus,
}

func init() {
	statusCmd.Flags().IntVar(&statusLimit, "limit", 10, "number of runs to show")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	app, err := buildApp()
	if err != nil {
		return err
	}
	defer app.Close()

	tasks, err := app.audits.ListTaskRecords(context.Background(), statusLimit)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		cmd.Println("No import runs recorded.")
		return nil
	}

	for i := range tasks {
		task := &tasks[i]
		cmd.Printf("%s  %-10s %-20s %d/%d records",
			task.StartedAt.Format("2006-01-02 15:04:05"), task.Source, task.Status,
			task.ItemsProcessed, task.ItemTotal)
		if len(task.RecordErrors) > 0 {
			cmd.Printf("  %d errors", len(task.RecordErrors))
		}
		cmd.Println()
		if task.Message != "" {
			cmd.Println("    " + task.Message)
		}
	}
	return nil
}
