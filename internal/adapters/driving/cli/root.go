// Package cli wires the import pipeline behind its cobra commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/regsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/regsync/internal/adapters/driven/storage/sqlite"
	coreconn "github.com/custodia-labs/regsync/internal/connectors/core"
	"github.com/custodia-labs/regsync/internal/connectors/nris"
	"github.com/custodia-labs/regsync/internal/core/ports/driven"
	"github.com/custodia-labs/regsync/internal/core/services"
	"github.com/custodia-labs/regsync/internal/logger"
)

// version is stamped by Execute.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "regsync",
	Short: "Synchronise regulatory records from government systems",
	Long: `regsync pulls inspection, permit and amendment records from configured
government systems, reconciles them into the local store and stages their
attachments.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.regsync/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute(v string) error {
	version = v
	return rootCmd.Execute()
}

// app holds the wired pipeline for one command invocation.
type app struct {
	settings *file.Settings
	store    *sqlite.Store
	sources  []driven.RecordSource
	importer *services.Importer
	backfill *services.Backfill
	audits   driven.AuditStore
}

// buildApp loads settings and wires stores, sources and services. The caller
// owns the returned app and must Close it.
func buildApp() (*app, error) {
	settings, err := file.Load(configPath)
	if err != nil {
		return nil, err
	}

	store, err := sqlite.NewStore(settings.DataDir)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	sources := []driven.RecordSource{
		nris.NewSource(nris.Config{
			APIURL:       settings.NRIS.APIURL,
			TokenURL:     settings.NRIS.TokenURL,
			ClientID:     settings.NRIS.ClientID,
			Username:     settings.NRIS.Username,
			Password:     settings.NRIS.Password,
			HorizonStart: settings.NRIS.HorizonStart,
			WindowDays:   settings.NRIS.WindowDays,
		}),
		coreconn.NewSource(coreconn.Config{
			APIURL:       settings.Core.APIURL,
			TokenURL:     settings.Core.TokenURL,
			ClientID:     settings.Core.ClientID,
			ClientSecret: settings.Core.ClientSecret,
			HorizonStart: settings.Core.HorizonStart,
			WindowDays:   settings.Core.WindowDays,
		}),
	}

	records := store.RecordStore()
	documents := store.DocumentStore()
	audits := store.AuditStore()
	attachments := services.NewAttachmentPipeline(records, documents, settings.Scratch())

	return &app{
		settings: settings,
		store:    store,
		sources:  sources,
		importer: services.NewImporter(sources, records, documents, audits, attachments, settings.FetchAttachments),
		backfill: services.NewBackfill(sources, records, attachments, settings.Concurrency),
		audits:   audits,
	}, nil
}

// Close releases the app's resources.
func (a *app) Close() {
	for _, source := range a.sources {
		if err := source.Close(); err != nil {
			logger.Warn("closing source %s: %v", source.Type(), err)
		}
	}
	if err := a.store.Close(); err != nil {
		logger.Warn("closing store: %v", err)
	}
}
