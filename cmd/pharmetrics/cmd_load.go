package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"pharmetrics/pgstore"
)

var (
	dbDSN      string
	initSchema bool
)

// loadCmd runs the pipeline and loads the report into PostgreSQL
var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Run the pipeline and load the report into PostgreSQL",
	RunE:  runLoad,
}

func init() {
	addInputFlags(loadCmd)
	loadCmd.Flags().StringVar(&dbDSN, "dsn", "", "PostgreSQL connection string")
	loadCmd.Flags().BoolVar(&initSchema, "init", false, "create the output tables before loading")
	loadCmd.MarkFlagRequired("dsn")

	rootCmd.AddCommand(loadCmd)
}

func runLoad(cmd *cobra.Command, args []string) error {
	rep, err := runPipeline(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	store, err := pgstore.Connect(ctx, dbDSN)
	if err != nil {
		return err
	}
	defer store.Close()

	if initSchema {
		if err := store.InitSchema(ctx); err != nil {
			return err
		}
		logger.Info("schema initialized")
	}
	if err := store.ReplaceReport(ctx, rep); err != nil {
		return err
	}

	logger.Info("report loaded",
		zap.Int("metric_rows", len(rep.Metrics)),
		zap.Int("chain_rows", len(rep.TopChains)),
		zap.Int("quantity_rows", len(rep.TopQuantities)))
	return nil
}
