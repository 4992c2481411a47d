package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"postwatch/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Long: `Serve the query API over HTTP.

Endpoints:
  GET /posts      sliced passthrough listing
  GET /anomalies  short/duplicate/suspicious report
  GET /summary    vocabulary summary
  GET /healthz    liveness
  GET /stats      runtime metrics`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	svc, collector := buildService()
	srv := server.New(svc, collector, cfg, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Listen()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(ctx)
	}
}
