// Package cli provides the command-line interface for postwatch.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"postwatch/internal/cache"
	"postwatch/internal/config"
	"postwatch/internal/metrics"
	"postwatch/internal/service"
	"postwatch/internal/upstream"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	configPath string
	verbose    bool

	// Global config and logger, set up in PersistentPreRunE
	cfg           config.Config
	logger        *slog.Logger
	loggerCleanup func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "postwatch",
	Short: "Paginated record proxy with anomaly and summary analytics",
	Long: `Postwatch fronts a paginated record source and answers three derived
queries: a sliced passthrough listing, a duplicate/anomaly report built on
similarity clustering, and a word-frequency summary. Results are memoized
in a bounded TTL cache.

Run "postwatch serve" for the HTTP API, or use the posts/anomalies/summary
commands for one-shot queries printed as JSON.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()
		if configPath != "" {
			if err := cfg.ApplyFile(configPath); err != nil {
				return err
			}
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}
		logger, loggerCleanup = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if loggerCleanup != nil {
			_ = loggerCleanup()
		}
	},
}

// buildService wires the query service from the loaded config. Every
// command shares one cache and one collector for its process lifetime.
func buildService() (*service.Service, *metrics.Collector) {
	collector := metrics.NewCollector()
	client := upstream.NewClient(upstream.Config{
		BaseURL: cfg.UpstreamURL,
		Timeout: cfg.UpstreamTimeout,
	}, logger, collector)
	fetcher := upstream.NewFetcher(client, cfg.ChunkLimit, logger)
	store := cache.New(cfg.MaxCacheItems)

	svc := service.New(fetcher, store, collector, service.Config{
		TTL:     cfg.CacheTTL,
		ScanMax: cfg.ScanMax,
	}, logger)
	return svc, collector
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(postsCmd)
	rootCmd.AddCommand(anomaliesCmd)
	rootCmd.AddCommand(summaryCmd)
}
