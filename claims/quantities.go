package claims

import "sort"

type quantityKey struct {
	ndc      string
	quantity int64
}

// QuantityAccumulator counts prescribed quantities per drug across every
// eligible claim, reverted or not. Partition-local instances merge
// associatively.
type QuantityAccumulator struct {
	groups map[quantityKey]int64
}

// NewQuantityAccumulator returns an empty accumulator.
func NewQuantityAccumulator() *QuantityAccumulator {
	return &QuantityAccumulator{groups: make(map[quantityKey]int64)}
}

// Add counts one reconciled claim's quantity for its drug.
func (a *QuantityAccumulator) Add(c ReconciledClaim) {
	a.groups[quantityKey{ndc: c.NDC, quantity: c.Quantity}]++
}

// Merge folds other into a.
func (a *QuantityAccumulator) Merge(other *QuantityAccumulator) {
	for key, n := range other.groups {
		a.groups[key] += n
	}
}

// Top returns up to k quantities per drug, ordered by count descending with
// ties broken by smaller quantity first so the selection is deterministic
// under any input order. Ranks are assigned by position. Output rows are
// sorted by (ndc, rank).
func (a *QuantityAccumulator) Top(k int) []QuantityFrequency {
	byNDC := make(map[string][]QuantityFrequency)
	for key, n := range a.groups {
		byNDC[key.ndc] = append(byNDC[key.ndc], QuantityFrequency{
			NDC:      key.ndc,
			Quantity: key.quantity,
			Count:    n,
		})
	}

	ndcs := make([]string, 0, len(byNDC))
	for ndc := range byNDC {
		ndcs = append(ndcs, ndc)
	}
	sort.Strings(ndcs)

	out := make([]QuantityFrequency, 0, len(byNDC))
	for _, ndc := range ndcs {
		ranks := byNDC[ndc]
		sort.Slice(ranks, func(i, j int) bool {
			if ranks[i].Count != ranks[j].Count {
				return ranks[i].Count > ranks[j].Count
			}
			return ranks[i].Quantity < ranks[j].Quantity
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
