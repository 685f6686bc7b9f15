package cmd

import (
	"github.com/spf13/cobra"

	"noorai/internal/server"
	"noorai/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long:  `Start the API server: generation, history, billing and the Stripe webhook.`,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	return server.Run(cmd.Context(), cfg)
}
