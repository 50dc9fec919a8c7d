package cli

import (
	"github.com/spf13/cobra"

	"remitwatch/internal/app"
)

var (
	exportCountry string
	exportDays    int
	exportCSVPath string
	exportPNGPath string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export historical records as CSV and/or PNG chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ExportOptions{
			Country: exportCountry,
			Days:    exportDays,
			CSVPath: exportCSVPath,
			PNGPath: exportPNGPath,
		}

		return getApp().Export(cmd.Context(), opts)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportCountry, "country", "", "Receiving country to export")
	exportCmd.Flags().IntVar(&exportDays, "days", 0, "Days of history to export (defaults to config window)")
	exportCmd.Flags().StringVar(&exportCSVPath, "csv", "", "Path to write CSV data")
	exportCmd.Flags().StringVar(&exportPNGPath, "png", "", "Path to write PNG chart")
}
