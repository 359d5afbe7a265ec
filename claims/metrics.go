package claims

import (
	"math"
	"sort"
)

type metricKey struct {
	npi string
	ndc string
}

// metricAgg is the partial aggregate for one (npi, ndc) group. Every field
// is additive, so partials from disjoint partitions merge by summing.
type metricAgg struct {
	fills    int64
	reverted int64
	priced   int64   // claims admitted to price aggregation by the policy
	sum      float64 // price sum over admitted claims
}

// MetricsAccumulator folds reconciled claims into per-(npi, ndc)
// aggregates. Accumulators built from disjoint partitions of a claim set
// can be merged; the merge is associative and commutative.
type MetricsAccumulator struct {
	policy Policy
	groups map[metricKey]*metricAgg
}

// NewMetricsAccumulator returns an empty accumulator using policy for
// price aggregation.
func NewMetricsAccumulator(policy Policy) *MetricsAccumulator {
	return &MetricsAccumulator{
		policy: policy,
		groups: make(map[metricKey]*metricAgg),
	}
}

// Add folds one reconciled claim into its (npi, ndc) group.
func (a *MetricsAccumulator) Add(c ReconciledClaim) {
	key := metricKey{npi: c.NPI, ndc: c.NDC}
	g := a.groups[key]
	if g == nil {
		g = &metricAgg{}
		a.groups[key] = g
	}
	g.fills++
	if c.Reverted {
		g.reverted++
		if a.policy.ExcludeReverted {
			return
		}
	}
	g.priced++
	g.sum += c.Price
}

// Merge folds other into a. Both accumulators must use the same policy.
func (a *MetricsAccumulator) Merge(other *MetricsAccumulator) {
	for key, o := range other.groups {
		g := a.groups[key]
		if g == nil {
			a.groups[key] = o
			continue
		}
		g.fills += o.fills
		g.reverted += o.reverted
		g.priced += o.priced
		g.sum += o.sum
	}
}

// Rows flattens the aggregates into output rows sorted by (npi, ndc)
// ascending. A group with no price-admitted claims reports zero averages;
// fills is always at least 1 because groups only exist for observed claims.
func (a *MetricsAccumulator) Rows() []MetricRow {
	rows := make([]MetricRow, 0, len(a.groups))
	for key, g := range a.groups {
		row := MetricRow{
			NPI:        key.npi,
			NDC:        key.ndc,
			Fills:      g.fills,
			Reverted:   g.reverted,
			TotalPrice: round2(g.sum),
		}
		if g.priced > 0 {
			row.AvgPrice = round2(g.sum / float64(g.priced))
		}
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].NPI != rows[j].NPI {
			return rows[i].NPI < rows[j].NPI
		}
		return rows[i].NDC < rows[j].NDC
	})
	return rows
}

// round2 rounds to two decimal places for reporting.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
