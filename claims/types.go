// Package claims implements the reconciliation and aggregation engine for
// pharmacy claim feeds: eligibility filtering against the pharmacy
// directory, revert resolution, per-(npi, ndc) fill metrics, per-drug chain
// price rankings, and per-drug quantity frequencies.
package claims

// Pharmacy is one row of the pharmacy directory: a location (NPI) and the
// retail chain it belongs to.
type Pharmacy struct {
	NPI   string `json:"npi"`
	Chain string `json:"chain"`
}

// Claim is a drug fill event submitted by a pharmacy.
type Claim struct {
	ID        string  `json:"id"`
	NPI       string  `json:"npi"`
	NDC       string  `json:"ndc"`
	Price     float64 `json:"price"`
	Quantity  int64   `json:"quantity"`
	Timestamp string  `json:"timestamp"`
}

// Revert is an event cancelling a previously submitted claim.
type Revert struct {
	ID        string `json:"id"`
	ClaimID   string `json:"claim_id"`
	Timestamp string `json:"timestamp"`
}

// ReconciledClaim is an eligible claim joined to its pharmacy chain and
// marked with its revert status. It exists only for the duration of a run
// and is never persisted.
type ReconciledClaim struct {
	Claim
	Chain    string
	Reverted bool
}

// MetricRow reports fill activity for one (npi, ndc) pair.
type MetricRow struct {
	NPI        string  `json:"npi" parquet:"npi"`
	NDC        string  `json:"ndc" parquet:"ndc"`
	Fills      int64   `json:"fills" parquet:"fills"`
	Reverted   int64   `json:"reverted" parquet:"reverted"`
	AvgPrice   float64 `json:"avg_price" parquet:"avg_price"`
	TotalPrice float64 `json:"total_price" parquet:"total_price"`
}

// ChainRank is one of the cheapest chains for a drug, rank 1 being the
// lowest average price.
type ChainRank struct {
	NDC      string  `json:"ndc" parquet:"ndc"`
	Chain    string  `json:"chain" parquet:"chain"`
	AvgPrice float64 `json:"avg_price" parquet:"avg_price"`
	Rank     int32   `json:"rank" parquet:"rank"`
}

// QuantityFrequency is one of the most prescribed quantities for a drug,
// rank 1 being the most frequent.
type QuantityFrequency struct {
	NDC      string `json:"ndc" parquet:"ndc"`
	Quantity int64  `json:"quantity" parquet:"quantity"`
	Count    int64  `json:"count" parquet:"count"`
	Rank     int32  `json:"rank" parquet:"rank"`
}

// Policy controls which claims participate in price aggregation. Fill and
// revert counters always cover every eligible claim.
type Policy struct {
	// ExcludeReverted drops reverted claims from total_price, avg_price,
	// and the chain averages. The default retains every eligible claim and
	// reports reverts only as a separate counter.
	ExcludeReverted bool
}
