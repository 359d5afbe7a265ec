package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"

	"pharmetrics/claims"
)

const flushInterval = 100_000

// writeParquet writes rows to a Snappy-compressed Parquet file, flushing a
// row group every flushInterval rows so large reports never hold more than
// one group in memory.
func writeParquet[T any](path string, rows []T) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	writer := parquet.NewGenericWriter[T](file,
		parquet.Compression(&parquet.Snappy),
	)
	for start := 0; start < len(rows); start += flushInterval {
		end := min(start+flushInterval, len(rows))
		if _, err := writer.Write(rows[start:end]); err != nil {
			file.Close()
			return fmt.Errorf("write %s: %w", path, err)
		}
		if err := writer.Flush(); err != nil {
			file.Close()
			return fmt.Errorf("flush %s: %w", path, err)
		}
	}
	if err := writer.Close(); err != nil {
		file.Close()
		return fmt.Errorf("close %s: %w", path, err)
	}
	return file.Close()
}

// WriteMetricsParquet writes the per-(npi, ndc) metrics stream.
func WriteMetricsParquet(path string, rows []claims.MetricRow) error {
	return writeParquet(path, rows)
}

// WriteChainsParquet writes the per-drug chain ranking stream.
func WriteChainsParquet(path string, rows []claims.ChainRank) error {
	return writeParquet(path, rows)
}

// WriteQuantitiesParquet writes the per-drug quantity frequency stream.
func WriteQuantitiesParquet(path string, rows []claims.QuantityFrequency) error {
	return writeParquet(path, rows)
}
