// =============================================================================
// Business Search - Serve Command
// =============================================================================
//
// COMMAND USAGE:
//   bisearch serve [--port 8080] [--allow-origin https://example.org]
//
// Serves the HTTP API until interrupted. Ctrl-C (SIGINT) or SIGTERM shut the
// server down gracefully.
//
// =============================================================================

package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/business-search/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the search helpers over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.New(cfg, logger).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "Listening port (config server.port, default 8080)")
	serveCmd.Flags().String("allow-origin", "", "Access-Control-Allow-Origin header value")
	rootCmd.AddCommand(serveCmd)
}
