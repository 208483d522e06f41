package cmd

import (
	"github.com/leafo/usdxmidi/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveOrigins []string
)

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "allowed-origin", nil, "CORS origin allowed to call the API (repeatable)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves chart conversion over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s := server.New(server.Options{
			AllowedOrigins: serveOrigins,
			Logger:         logrus.StandardLogger(),
		})
		return s.ListenAndServe(serveAddr)
	},
}
