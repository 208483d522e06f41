package cmd

import (
	"github.com/leafo/usdxmidi/batch"
	"github.com/spf13/cobra"
)

var cleanOutDir string

func init() {
	cleanCmd.Flags().StringVarP(&cleanOutDir, "out-dir", "o", defaultOutDir, "directory to clear")
	rootCmd.AddCommand(cleanCmd)
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Deletes all prepared output",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return batch.Clean(cleanOutDir)
	},
}
