package cmd

import (
	"fmt"

	"github.com/leafo/usdxmidi/usdx"
	"github.com/spf13/cobra"
)

var (
	convertOutDir string
	convertLyrics bool
)

func init() {
	convertCmd.Flags().StringVarP(&convertOutDir, "out-dir", "o", defaultOutDir, "directory for <name>/<name>.mid output")
	convertCmd.Flags().BoolVar(&convertLyrics, "lyrics", false, "include lyric events")
	rootCmd.AddCommand(convertCmd)
}

const defaultOutDir = "data/prepared"

var convertCmd = &cobra.Command{
	Use:   "convert <chart.txt> [out.mid]",
	Short: "Converts one chart",
	Long: `Converts one chart to MIDI. Without an explicit output path the file is written
to <out-dir>/<name>/<name>.mid. A rejected chart is reported and is not an error.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conv := usdx.NewConverter(convertOutDir)
		conv.Lyrics = convertLyrics

		midiPath := conv.OutputPath(args[0])
		if len(args) == 2 {
			midiPath = args[1]
		}

		outcome, err := conv.ConvertTo(args[0], midiPath)
		if err != nil {
			return err
		}

		if !outcome.Verdict.Accepted {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: not suitable (%s), skipped\n", args[0], outcome.Verdict.Reason)
			return nil
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d notes)\n", args[0], outcome.MidiPath, len(outcome.Document.Notes))
		return nil
	},
}
