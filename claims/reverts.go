package claims

// RevertIndex is the set of claim ids with at least one revert. A set, not
// a counter: a claim reverted more than once still counts as reverted
// exactly once.
type RevertIndex map[string]struct{}

// NewRevertIndex builds a RevertIndex from the revert feed. Reverts with an
// empty claim id are ignored.
func NewRevertIndex(reverts []Revert) RevertIndex {
	idx := make(RevertIndex, len(reverts))
	for _, r := range reverts {
		if r.ClaimID == "" {
			continue
		}
		idx[r.ClaimID] = struct{}{}
	}
	return idx
}

// Reverted reports whether the claim has at least one revert.
func (idx RevertIndex) Reverted(claimID string) bool {
	_, ok := idx[claimID]
	return ok
}

// Reconcile filters claims against the directory and joins each survivor to
// its chain and revert status. Reverts referencing unknown or filtered-out
// claims are no-ops.
func Reconcile(cs []Claim, dir Directory, idx RevertIndex) []ReconciledClaim {
	out := make([]ReconciledClaim, 0, len(cs))
	for _, c := range cs {
		chain, ok := dir.Chain(c.NPI)
		if !ok {
			continue
		}
		out = append(out, ReconciledClaim{
			Claim:    c,
			Chain:    chain,
			Reverted: idx.Reverted(c.ID),
		})
	}
	return out
}
