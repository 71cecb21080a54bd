package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd is the base command for the convertd CLI.
var rootCmd = &cobra.Command{
	Use:   "convertd",
	Short: "Office document conversion service",
	Long: `convertd converts uploaded office documents to PDF and exports
spreadsheets as per-sheet HTML, shelling out to a headless LibreOffice.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
