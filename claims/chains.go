package claims

import "sort"

type chainKey struct {
	ndc   string
	chain string
}

type chainAgg struct {
	count int64
	sum   float64
}

// ChainAccumulator aggregates claim prices per (ndc, chain) and ranks the
// cheapest chains per drug. Like MetricsAccumulator, partition-local
// instances merge associatively.
type ChainAccumulator struct {
	policy Policy
	groups map[chainKey]*chainAgg
}

// NewChainAccumulator returns an empty accumulator using policy for price
// aggregation.
func NewChainAccumulator(policy Policy) *ChainAccumulator {
	return &ChainAccumulator{
		policy: policy,
		groups: make(map[chainKey]*chainAgg),
	}
}

// Add folds one reconciled claim into its (ndc, chain) group. Claims the
// policy excludes never materialize a group, so no group averages over
// zero claims.
func (a *ChainAccumulator) Add(c ReconciledClaim) {
	if c.Reverted && a.policy.ExcludeReverted {
		return
	}
	key := chainKey{ndc: c.NDC, chain: c.Chain}
	g := a.groups[key]
	if g == nil {
		g = &chainAgg{}
		a.groups[key] = g
	}
	g.count++
	g.sum += c.Price
}

// Merge folds other into a. Both accumulators must use the same policy.
func (a *ChainAccumulator) Merge(other *ChainAccumulator) {
	for key, o := range other.groups {
		g := a.groups[key]
		if g == nil {
			a.groups[key] = o
			continue
		}
		g.count += o.count
		g.sum += o.sum
	}
}

// Top returns up to k chains per drug, ordered by average price ascending
// with ties broken by chain name ascending so the selection is
// deterministic under any input order. Ranks are assigned by position.
// Output rows are sorted by (ndc, rank).
func (a *ChainAccumulator) Top(k int) []ChainRank {
	byNDC := make(map[string][]ChainRank)
	for key, g := range a.groups {
		byNDC[key.ndc] = append(byNDC[key.ndc], ChainRank{
			NDC:      key.ndc,
			Chain:    key.chain,
			AvgPrice: round2(g.sum / float64(g.count)),
		})
	}

	ndcs := make([]string, 0, len(byNDC))
	for ndc := range byNDC {
		ndcs = append(ndcs, ndc)
	}
	sort.Strings(ndcs)

	out := make([]ChainRank, 0, len(byNDC))
	for _, ndc := range ndcs {
		ranks := byNDC[ndc]
		sort.Slice(ranks, func(i, j int) bool {
			if ranks[i].AvgPrice != ranks[j].AvgPrice {
				return ranks[i].AvgPrice < ranks[j].AvgPrice
			}
			return ranks[i].Chain < ranks[j].Chain
		})
		if len(ranks) > k {
			ranks = ranks[:k]
		}
		for i := range ranks {
			ranks[i].Rank = int32(i + 1)
			out = append(out, ranks[i])
		}
	}
	return out
}
