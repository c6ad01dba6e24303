package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/workorders-tracker/internal/bootstrap"
	"github.com/joseph-ayodele/workorders-tracker/internal/common"
	"github.com/joseph-ayodele/workorders-tracker/internal/repository"
)

var (
	verbose bool
	cfg     *common.Config
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "workorders",
	Short: "Digitize scanned work orders and browse the saved records",
	Long: `Extracts work-order fields from images and PDFs with a hosted vision model,
exports them to Excel and, when DB_URL is set, saves and queries them in the record store.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		// Messages with variables but no time/level
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey || a.Key == slog.LevelKey {
					return slog.Attr{}
				}
				return a
			},
		}))
		slog.SetDefault(logger)

		var err error
		cfg, err = common.LoadConfig()
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.AddCommand(extractCmd, queryCmd, distinctCmd, migrateCmd, schemaCmd)
}

// openStore wires an app for store commands and fails with the configuration
// warning when no store is configured.
func openStore(cmd *cobra.Command, migrate bool) (*bootstrap.App, error) {
	app, err := bootstrap.New(cmd.Context(), cfg, bootstrap.Options{Migrate: migrate}, logger)
	if err != nil {
		return nil, err
	}
	if !app.Gateway.Available() {
		app.Close()
		printStoreWarning(cmd, app.Gateway.Warning())
		return nil, common.ErrStoreUnavailable
	}
	return app, nil
}

func printStoreWarning(cmd *cobra.Command, warning string) {
	fmt.Fprintln(cmd.ErrOrStderr(), "warning:", warning)
	fmt.Fprintln(cmd.ErrOrStderr())
	fmt.Fprintln(cmd.ErrOrStderr(), repository.SchemaSQL)
}

func isStoreUnavailable(err error) bool {
	return errors.Is(err, common.ErrStoreUnavailable)
}
