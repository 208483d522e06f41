package cmd

import (
	"fmt"

	"github.com/leafo/usdxmidi/usdx"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check <chart.txt>...",
	Short: "Reports whether charts are suitable for conversion",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, path := range args {
			verdict, err := usdx.CheckValidity(path)
			if err != nil {
				return err
			}

			if verdict.Accepted {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: ok\n", path)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, verdict.Reason)
			}
		}
		return nil
	},
}
