package cmd

import (
	"github.com/spf13/cobra"
)

var drivesCmd = &cobra.Command{
	Use:   "drives",
	Short: "List mounted volumes and their serial numbers",
	Long: `List every mounted volume with its root, label and serial number.

Use the SERIAL (or VOLUME ID) column as --serial or BACKUP_DRIVE_SERIAL.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printDrives(cmd)
	},
}

func init() {
	rootCmd.AddCommand(drivesCmd)
}
