package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var collectCorridor string

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Collect quotes for one corridor and persist the current bucket",
	RunE: func(cmd *cobra.Command, args []string) error {
		if collectCorridor == "" {
			return fmt.Errorf("--corridor is required")
		}
		return getApp().Collect(cmd.Context(), collectCorridor)
	},
}

func init() {
	collectCmd.Flags().StringVar(&collectCorridor, "corridor", "", "Corridor name as configured (e.g. philippines)")
}
