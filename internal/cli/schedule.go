package cli

import (
	"github.com/spf13/cobra"

	"remitwatch/internal/app"
)

var scheduleHours int

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Report time buckets with no persisted records",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := app.ScheduleOptions{
			WindowHours: scheduleHours,
		}

		return getApp().Schedule(cmd.Context(), opts)
	},
}

func init() {
	scheduleCmd.Flags().IntVar(&scheduleHours, "hours", 48, "Window to inspect, in hours")
}
