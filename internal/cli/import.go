package cli

import (
	"github.com/spf13/cobra"

	"remitwatch/internal/app"
)

var (
	importFile      string
	importBatchSize int
	importDryRun    bool
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a historical rates CSV into the store",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ImportOptions{
			Path:      importFile,
			BatchSize: importBatchSize,
			DryRun:    importDryRun,
		}

		return getApp().Import(cmd.Context(), opts)
	},
}

func init() {
	importCmd.Flags().StringVar(&importFile, "file", "", "Path to the CSV file to import")
	importCmd.Flags().IntVar(&importBatchSize, "batch-size", 500, "Rows per upsert batch")
	importCmd.Flags().BoolVar(&importDryRun, "dry-run", false, "Parse and report without writing")
}
