package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"pharmetrics/claims"
)

type revertRow struct {
	ID        string `json:"id"`
	ClaimID   string `json:"claim_id"`
	Timestamp string `json:"timestamp"`
}

// LoadReverts reads every reverts JSON file under paths (array or NDJSON).
// Rows missing id or claim_id are skipped and counted.
func LoadReverts(paths []string, logger *zap.Logger) ([]claims.Revert, error) {
	files, err := Files(paths, ".json")
	if err != nil {
		return nil, err
	}

	var out []claims.Revert
	var skipped int
	for _, fp := range files {
		n, err := readRevertsFile(fp, &out)
		if err != nil {
			return nil, err
		}
		skipped += n
	}

	if logger != nil {
		logger.Info("loaded reverts",
			zap.Int("reverts", len(out)),
			zap.Int("skipped", skipped),
			zap.Int("files", len(files)))
	}
	return out, nil
}

func readRevertsFile(path string, out *[]claims.Revert) (skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	rr, err := newRowReader(f)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}
	for {
		raw, err := rr.Next()
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return skipped, fmt.Errorf("decode %s: %w", path, err)
		}
		var row revertRow
		if err := json.Unmarshal(raw, &row); err != nil {
			skipped++
			continue
		}
		id := strings.TrimSpace(row.ID)
		claimID := strings.TrimSpace(row.ClaimID)
		if id == "" || claimID == "" {
			skipped++
			continue
		}
		*out = append(*out, claims.Revert{
			ID:        id,
			ClaimID:   claimID,
			Timestamp: strings.TrimSpace(row.Timestamp),
		})
	}
}
