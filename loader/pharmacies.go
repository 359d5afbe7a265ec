package loader

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"pharmetrics/claims"
)

type pharmacyRow struct {
	ID         string `json:"id"`
	NPI        string `json:"npi"`
	PharmacyID string `json:"pharmacy_id"`
	Chain      string `json:"chain"`
}

func (r pharmacyRow) toPharmacy() (claims.Pharmacy, bool) {
	npi := strings.TrimSpace(r.NPI)
	if npi == "" {
		npi = strings.TrimSpace(r.ID)
	}
	if npi == "" {
		npi = strings.TrimSpace(r.PharmacyID)
	}
	chain := strings.TrimSpace(r.Chain)
	if npi == "" || chain == "" {
		return claims.Pharmacy{}, false
	}
	return claims.Pharmacy{NPI: npi, Chain: chain}, true
}

// LoadPharmacies reads the pharmacy directory from CSV or JSON files under
// paths. For CSV, the identifier column may be headed id, npi, or
// pharmacy_id (case-insensitive) alongside a chain column.
func LoadPharmacies(paths []string, logger *zap.Logger) ([]claims.Pharmacy, error) {
	files, err := Files(paths, ".csv", ".json")
	if err != nil {
		return nil, err
	}

	var out []claims.Pharmacy
	var skipped int
	for _, fp := range files {
		var n int
		if strings.ToLower(filepath.Ext(fp)) == ".csv" {
			n, err = readPharmaciesCSV(fp, &out)
		} else {
			n, err = readPharmaciesJSON(fp, &out)
		}
		if err != nil {
			return nil, err
		}
		skipped += n
	}

	if logger != nil {
		logger.Info("loaded pharmacies",
			zap.Int("pharmacies", len(out)),
			zap.Int("skipped", skipped),
			zap.Int("files", len(files)))
	}
	return out, nil
}

func readPharmaciesCSV(path string, out *[]claims.Pharmacy) (skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	br := bufio.NewReaderSize(f, 256*1024)

	// Skip UTF-8 BOM if present
	if bom, err := br.Peek(3); err == nil && len(bom) >= 3 &&
		bom[0] == 0xEF && bom[1] == 0xBB && bom[2] == 0xBF {
		br.Discard(3)
	}

	reader := csv.NewReader(br)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read header %s: %w", path, err)
	}

	idCol, chainCol := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "id", "npi", "pharmacy_id":
			if idCol < 0 {
				idCol = i
			}
		case "chain":
			chainCol = i
		}
	}
	if idCol < 0 || chainCol < 0 {
		return 0, fmt.Errorf("%s: missing id/npi or chain column", path)
	}

	for {
		rec, err := reader.Read()
		if err == io.EOF {
			return skipped, nil
		}
		if err != nil {
			return skipped, fmt.Errorf("read %s: %w", path, err)
		}
		if idCol >= len(rec) || chainCol >= len(rec) {
			skipped++
			continue
		}
		npi := strings.TrimSpace(rec[idCol])
		chain := strings.TrimSpace(rec[chainCol])
		if npi == "" || chain == "" {
			skipped++
			continue
		}
		*out = append(*out, claims.Pharmacy{NPI: npi, Chain: chain})
	}
}

func readPharmaciesJSON(path string, out *[]claims.Pharmacy) (skipped int, err error) {
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
		var row pharmacyRow
		if err := json.Unmarshal(raw, &row); err != nil {
			skipped++
			continue
		}
		p, ok := row.toPharmacy()
		if !ok {
			skipped++
			continue
		}
		*out = append(*out, p)
	}
}
