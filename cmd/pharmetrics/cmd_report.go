package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pharmetrics/claims"
	"pharmetrics/config"
	"pharmetrics/loader"
	"pharmetrics/report"
)

var (
	pharmaciesPath string
	claimsPath     string
	revertsPath    string
	outMetrics     string
	outChains      string
	outQuantities  string
	outFormat      string
)

// reportCmd computes all three output streams
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Compute fill metrics, chain rankings, and quantity frequencies",
	RunE:  runReport,
}

// metricsCmd computes only the per-(npi, ndc) metrics stream
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Compute per-(npi, ndc) fill metrics",
	RunE:  runMetrics,
}

// analyticsCmd computes only the two per-drug ranking streams
var analyticsCmd = &cobra.Command{
	Use:   "analytics",
	Short: "Compute chain rankings and quantity frequencies",
	RunE:  runAnalytics,
}

func addInputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&pharmaciesPath, "pharmacies", "", "pharmacies file or directory (CSV or JSON)")
	cmd.Flags().StringVar(&claimsPath, "claims", "", "claims file or directory (JSON)")
	cmd.Flags().StringVar(&revertsPath, "reverts", "", "reverts file or directory (JSON)")
	cmd.Flags().StringVar(&outFormat, "format", "json", "output format: json or parquet")
	cmd.MarkFlagRequired("pharmacies")
	cmd.MarkFlagRequired("claims")
}

func init() {
	addInputFlags(reportCmd)
	reportCmd.Flags().StringVar(&outMetrics, "out-metrics", "", "output path for the metrics stream")
	reportCmd.Flags().StringVar(&outChains, "out-chains", "", "output path for the chain ranking stream")
	reportCmd.Flags().StringVar(&outQuantities, "out-quantities", "", "output path for the quantity frequency stream")
	reportCmd.MarkFlagRequired("out-metrics")
	reportCmd.MarkFlagRequired("out-chains")
	reportCmd.MarkFlagRequired("out-quantities")

	addInputFlags(metricsCmd)
	metricsCmd.Flags().StringVar(&outMetrics, "output", "", "output path for the metrics stream")
	metricsCmd.MarkFlagRequired("output")

	addInputFlags(analyticsCmd)
	analyticsCmd.Flags().StringVar(&outChains, "output-top-chains", "", "output path for the chain ranking stream")
	analyticsCmd.Flags().StringVar(&outQuantities, "output-quantities", "", "output path for the quantity frequency stream")
	analyticsCmd.MarkFlagRequired("output-top-chains")
	analyticsCmd.MarkFlagRequired("output-quantities")

	rootCmd.AddCommand(reportCmd, metricsCmd, analyticsCmd)
}

// runPipeline loads the three feeds and executes the reconciliation run.
func runPipeline(cmd *cobra.Command) (*claims.Report, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	pharmacies, err := loader.LoadPharmacies([]string{pharmaciesPath}, logger)
	if err != nil {
		return nil, err
	}
	claimRecords, err := loader.LoadClaims([]string{claimsPath}, logger)
	if err != nil {
		return nil, err
	}
	var reverts []claims.Revert
	if revertsPath != "" {
		reverts, err = loader.LoadReverts([]string{revertsPath}, logger)
		if err != nil {
			return nil, err
		}
	}

	rep, err := claims.Run(cmd.Context(), claims.Inputs{
		Pharmacies: pharmacies,
		Claims:     claimRecords,
		Reverts:    reverts,
	}, cfg.Options())
	if err != nil {
		return nil, err
	}

	logger.Info("pipeline complete",
		zap.Int("metric_rows", len(rep.Metrics)),
		zap.Int("chain_rows", len(rep.TopChains)),
		zap.Int("quantity_rows", len(rep.TopQuantities)))
	return rep, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	rep, err := runPipeline(cmd)
	if err != nil {
		return err
	}
	if err := writeMetrics(outMetrics, rep.Metrics); err != nil {
		return err
	}
	if err := writeChains(outChains, rep.TopChains); err != nil {
		return err
	}
	return writeQuantities(outQuantities, rep.TopQuantities)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	rep, err := runPipeline(cmd)
	if err != nil {
		return err
	}
	return writeMetrics(outMetrics, rep.Metrics)
}

func runAnalytics(cmd *cobra.Command, args []string) error {
	rep, err := runPipeline(cmd)
	if err != nil {
		return err
	}
	if err := writeChains(outChains, rep.TopChains); err != nil {
		return err
	}
	return writeQuantities(outQuantities, rep.TopQuantities)
}

func writeMetrics(path string, rows []claims.MetricRow) error {
	switch outFormat {
	case "json":
		return report.WriteJSON(path, rows)
	case "parquet":
		return report.WriteMetricsParquet(path, rows)
	default:
		return fmt.Errorf("unknown format %q", outFormat)
	}
}

func writeChains(path string, rows []claims.ChainRank) error {
	switch outFormat {
	case "json":
		return report.WriteJSON(path, rows)
	case "parquet":
		return report.WriteChainsParquet(path, rows)
	default:
		return fmt.Errorf("unknown format %q", outFormat)
	}
}

func writeQuantities(path string, rows []claims.QuantityFrequency) error {
	switch outFormat {
	case "json":
		return report.WriteJSON(path, rows)
	case "parquet":
		return report.WriteQuantitiesParquet(path, rows)
	default:
		return fmt.Errorf("unknown format %q", outFormat)
	}
}
