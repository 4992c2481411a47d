package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"postwatch/internal/service"
	"postwatch/internal/similarity"
)

// One-shot query commands: build the pipeline in-process, run one query,
// print the JSON response. The cache is alive for the process only, so
// these always hit upstream.

var (
	postsOffset int
	postsLimit  int
	postsOwner  int

	anomMinLen    int
	anomMethod    string
	anomThreshold float64
	anomSusp      int
	anomScan      int

	summaryTopN    int
	summaryStops   bool
	summaryScanCap int
)

var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Fetch one record slice",
	RunE:  runPosts,
}

var anomaliesCmd = &cobra.Command{
	Use:   "anomalies",
	Short: "Run one anomaly scan",
	RunE:  runAnomalies,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Run one vocabulary summary",
	RunE:  runSummary,
}

func init() {
	postsCmd.Flags().IntVar(&postsOffset, "offset", 0, "zero-based start index")
	postsCmd.Flags().IntVar(&postsLimit, "limit", 10, "how many records to return")
	postsCmd.Flags().IntVar(&postsOwner, "user", 0, "filter by owner id (0 = all)")

	anomaliesCmd.Flags().IntVar(&anomMinLen, "min-title-len", 15, "flag titles shorter than this")
	anomaliesCmd.Flags().StringVar(&anomMethod, "method", "fuzzy", "similarity backend: exact, fuzzy, cosine, embedding")
	anomaliesCmd.Flags().Float64Var(&anomThreshold, "threshold", 0.4, "similarity threshold in [0,1]")
	anomaliesCmd.Flags().IntVar(&anomSusp, "suspicious-threshold", 5, "similar-title count above which an owner is suspicious")
	anomaliesCmd.Flags().IntVar(&anomScan, "max-scan", 0, "cap on records scanned (0 = configured default)")

	summaryCmd.Flags().IntVar(&summaryTopN, "top-n", 3, "how many owners to rank")
	summaryCmd.Flags().BoolVar(&summaryStops, "drop-stopwords", true, "filter stopwords before counting")
	summaryCmd.Flags().IntVar(&summaryScanCap, "max-scan", 0, "cap on records scanned (0 = configured default)")
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runPosts(cmd *cobra.Command, args []string) error {
	svc, _ := buildService()

	q := service.SliceQuery{Offset: postsOffset, Limit: postsLimit, Cache: false}
	if postsOwner > 0 {
		q.OwnerID = &postsOwner
	}

	result, err := svc.Slice(context.Background(), q)
	if err != nil {
		return fmt.Errorf("slice query: %w", err)
	}
	return printJSON(result)
}

func runAnomalies(cmd *cobra.Command, args []string) error {
	svc, _ := buildService()

	scan := anomScan
	if scan <= 0 {
		scan = cfg.ScanMax
	}
	result, err := svc.Anomalies(context.Background(), service.AnomalyQuery{
		MinTitleLength:      anomMinLen,
		Method:              similarity.Method(anomMethod),
		SimilarThreshold:    anomThreshold,
		SuspiciousThreshold: anomSusp,
		ScanCap:             scan,
		Cache:               false,
	})
	if err != nil {
		return fmt.Errorf("anomaly query: %w", err)
	}
	return printJSON(result)
}

func runSummary(cmd *cobra.Command, args []string) error {
	svc, _ := buildService()

	scan := summaryScanCap
	if scan <= 0 {
		scan = cfg.ScanMax
	}
	result, err := svc.Summary(context.Background(), service.SummaryQuery{
		TopN:          summaryTopN,
		DropStopwords: summaryStops,
		ScanCap:       scan,
		Cache:         false,
	})
	if err != nil {
		return fmt.Errorf("summary query: %w", err)
	}
	return printJSON(result)
}
