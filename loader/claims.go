package loader

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"go.uber.org/zap"

	"pharmetrics/claims"
)

type claimRow struct {
	ID        string    `json:"id"`
	NPI       string    `json:"npi"`
	NDC       string    `json:"ndc"`
	Price     flexFloat `json:"price"`
	Quantity  flexFloat `json:"quantity"`
	Timestamp string    `json:"timestamp"`
}

// toClaim validates the row. Quantities must be positive and integral;
// claims failing validation are skipped, not errored, so one bad row never
// fails a batch.
func (r claimRow) toClaim() (claims.Claim, bool) {
	id := strings.TrimSpace(r.ID)
	npi := strings.TrimSpace(r.NPI)
	ndc := strings.TrimSpace(r.NDC)
	if id == "" || npi == "" || ndc == "" || !r.Price.valid || !r.Quantity.valid {
		return claims.Claim{}, false
	}
	q := r.Quantity.value
	if q <= 0 || q != math.Trunc(q) {
		return claims.Claim{}, false
	}
	return claims.Claim{
		ID:        id,
		NPI:       npi,
		NDC:       ndc,
		Price:     r.Price.value,
		Quantity:  int64(q),
		Timestamp: strings.TrimSpace(r.Timestamp),
	}, true
}

// LoadClaims reads every claims JSON file under paths (array or NDJSON).
// Malformed rows are skipped and counted; unreadable files fail the load.
func LoadClaims(paths []string, logger *zap.Logger) ([]claims.Claim, error) {
	files, err := Files(paths, ".json")
	if err != nil {
		return nil, err
	}

	var out []claims.Claim
	var skipped int
	for _, fp := range files {
		n, err := readClaimsFile(fp, &out)
		if err != nil {
			return nil, err
		}
		skipped += n
	}

	if logger != nil {
		logger.Info("loaded claims",
			zap.Int("claims", len(out)),
			zap.Int("skipped", skipped),
			zap.Int("files", len(files)))
	}
	return out, nil
}

func readClaimsFile(path string, out *[]claims.Claim) (skipped int, err error) {
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
		var row claimRow
		if err := json.Unmarshal(raw, &row); err != nil {
			skipped++
			continue
		}
		c, ok := row.toClaim()
		if !ok {
			skipped++
			continue
		}
		*out = append(*out, c)
	}
}
