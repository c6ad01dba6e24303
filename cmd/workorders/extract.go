package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/workorders-tracker/internal/bootstrap"
	"github.com/joseph-ayodele/workorders-tracker/internal/export"
	"github.com/joseph-ayodele/workorders-tracker/internal/ingest"
)

var (
	extractOut           string
	extractSave          bool
	extractIncludeHidden bool
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE_OR_DIR...",
	Short: "Extract work orders from images and PDFs",
	Long: `Runs every image and every PDF page through the extraction model, one at a time.
Files that fail are listed at the end and never stop the batch.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		ctx := cmd.Context()
		app, err := bootstrap.New(ctx, cfg, bootstrap.Options{Extraction: true}, logger)
		if err != nil {
			return err
		}
		defer app.Close()

		docs, readFailures, stats, err := ingest.Collect(ctx, args, !extractIncludeHidden)
		if err != nil {
			return err
		}
		logger.Debug("ingest.collect.ok", "scanned", stats.Scanned, "matched", stats.Matched, "failed", stats.Failed)

		stderr := cmd.ErrOrStderr()
		batch := app.Processor.Run(ctx, docs, func(done, total int, name string) {
			fmt.Fprintf(stderr, "[%d/%d] %s\n", done, total, name)
		})
		if len(readFailures) > 0 {
			batch.Failures = append(readFailures, batch.Failures...)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Extracted %d record(s)\n", len(batch.Records))
		printRecords(out, batch.Records)
		printFailures(out, batch.Failures)

		if extractOut != "" && len(batch.Records) > 0 {
			data, err := app.Exporter.WriteRecords(batch.Records)
			if err != nil {
				return err
			}
			if err := os.WriteFile(extractOut, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", extractOut, err)
			}
			fmt.Fprintf(out, "Wrote %s\n", extractOut)
		}

		if extractSave && len(batch.Records) > 0 {
			n, err := app.Gateway.Insert(ctx, batch.Records)
			if isStoreUnavailable(err) {
				printStoreWarning(cmd, app.Gateway.Warning())
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %d record(s)\n", n)
		}
		return nil
	},
}

func init() {
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "write the batch to this .xlsx file (e.g. "+export.BatchFileName+")")
	extractCmd.Flags().BoolVar(&extractSave, "save", false, "insert the extracted records into the record store")
	extractCmd.Flags().BoolVar(&extractIncludeHidden, "include-hidden", false, "also read hidden files inside directories")
}
