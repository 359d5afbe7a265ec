package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmetrics/claims"
)

func writeFixtures(t *testing.T) (pharmacies, claimsDir, revertsDir string) {
	t.Helper()
	dir := t.TempDir()

	pharmacies = filepath.Join(dir, "pharmacies.csv")
	require.NoError(t, os.WriteFile(pharmacies,
		[]byte("npi,chain\n111,CVS\n222,Walgreens\n"), 0o644))

	claimsDir = filepath.Join(dir, "claims")
	require.NoError(t, os.MkdirAll(claimsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(claimsDir, "claims.json"), []byte(`[
		{"id":"c1","npi":"111","ndc":"d1","price":10,"quantity":30},
		{"id":"c2","npi":"111","ndc":"d1","price":20,"quantity":30},
		{"id":"c3","npi":"222","ndc":"d1","price":5,"quantity":60}
	]`), 0o644))

	revertsDir = filepath.Join(dir, "reverts")
	require.NoError(t, os.MkdirAll(revertsDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(revertsDir, "reverts.json"),
		[]byte(`[{"id":"r1","claim_id":"c2"}]`), 0o644))

	return pharmacies, claimsDir, revertsDir
}

func TestReportCommand(t *testing.T) {
	pharmacies, claimsDir, revertsDir := writeFixtures(t)
	outDir := t.TempDir()
	metricsPath := filepath.Join(outDir, "metrics.json")
	chainsPath := filepath.Join(outDir, "chains.json")
	quantitiesPath := filepath.Join(outDir, "quantities.json")

	rootCmd.SetArgs([]string{
		"report",
		"--pharmacies", pharmacies,
		"--claims", claimsDir,
		"--reverts", revertsDir,
		"--out-metrics", metricsPath,
		"--out-chains", chainsPath,
		"--out-quantities", quantitiesPath,
		"--config", filepath.Join(outDir, "absent.yaml"),
	})
	require.NoError(t, rootCmd.Execute())

	var metrics []claims.MetricRow
	data, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &metrics))
	require.Len(t, metrics, 2)
	assert.Equal(t, claims.MetricRow{
		NPI: "111", NDC: "d1",
		Fills: 2, Reverted: 1,
		AvgPrice: 15, TotalPrice: 30,
	}, metrics[0])

	var chains []claims.ChainRank
	data, err = os.ReadFile(chainsPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &chains))
	require.Len(t, chains, 2)
	assert.Equal(t, "Walgreens", chains[0].Chain)

	var quantities []claims.QuantityFrequency
	data, err = os.ReadFile(quantitiesPath)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &quantities))
	require.Len(t, quantities, 2)
	assert.Equal(t, int64(30), quantities[0].Quantity)
}
