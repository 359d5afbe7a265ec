package claims

// Directory maps pharmacy NPI to chain name. Built once per run; claims
// whose NPI is not in the directory are not eligible for any output.
type Directory map[string]string

// NewDirectory builds a Directory from the pharmacy feed. Rows with an
// empty NPI are ignored; a duplicated NPI keeps the last row seen.
func NewDirectory(pharmacies []Pharmacy) Directory {
	dir := make(Directory, len(pharmacies))
	for _, p := range pharmacies {
		if p.NPI == "" {
			continue
		}
		dir[p.NPI] = p.Chain
	}
	return dir
}

// Chain returns the chain for npi and whether the pharmacy is known.
func (d Directory) Chain(npi string) (string, bool) {
	chain, ok := d[npi]
	return chain, ok
}

// FilterEligible returns the claims whose NPI appears in the directory.
// Dropping unknown NPIs is a business filter, not a data-quality error.
func FilterEligible(cs []Claim, dir Directory) []Claim {
	out := make([]Claim, 0, len(cs))
	for _, c := range cs {
		if _, ok := dir[c.NPI]; ok {
			out = append(out, c)
		}
	}
	return out
}
