package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/NeurArk/ai-contract-guardian/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mock Contract Guardian API locally",
	Long: `serve starts an in-memory implementation of the Contract Guardian
API with a simulated analysis pipeline. Useful for developing against
the CLI without the hosted backend.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srv, err := server.New(current.cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
