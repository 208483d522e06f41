package cmd

import (
	"fmt"
	"runtime"
	"sort"

	"github.com/leafo/usdxmidi/batch"
	"github.com/leafo/usdxmidi/usdx"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var batchOpts batch.Options

func init() {
	batchCmd.Flags().StringVarP(&batchOpts.OutputDir, "out-dir", "o", defaultOutDir, "output directory")
	batchCmd.Flags().IntVarP(&batchOpts.Workers, "workers", "w", runtime.NumCPU(), "concurrent conversions")
	batchCmd.Flags().BoolVar(&batchOpts.RequireAudio, "require-audio", false, "skip song directories without an .mp3")
	batchCmd.Flags().BoolVar(&batchOpts.Lyrics, "lyrics", false, "include lyric events")
	rootCmd.AddCommand(batchCmd)
}

var batchCmd = &cobra.Command{
	Use:   "batch <library-dir>",
	Short: "Converts every song directory of a library",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		batchOpts.Logger = logrus.StandardLogger()

		report, err := batch.Prepare(cmd.Context(), args[0], batchOpts)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Prepared: %d\n", len(report.Converted))

		fmt.Fprintln(out, "Skipped songs:")
		reasons := make([]string, 0, len(report.Rejected))
		for reason := range report.Rejected {
			reasons = append(reasons, string(reason))
		}
		sort.Strings(reasons)
		for _, reason := range reasons {
			fmt.Fprintf(out, "%s: %d\n", reason, report.Rejected[usdx.RejectionReason(reason)])
		}
		fmt.Fprintf(out, "MISSING_FILES: %d\n", len(report.Skipped))

		if len(report.Failures) > 0 {
			fmt.Fprintf(out, "Failed: %d\n", len(report.Failures))
			for _, failure := range report.Failures {
				fmt.Fprintf(out, "  %s: %v\n", failure.Song.Chart, failure.Err)
			}
			return fmt.Errorf("%d charts failed to convert", len(report.Failures))
		}

		return nil
	},
}
