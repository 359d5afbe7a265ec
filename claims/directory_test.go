package claims

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDirectory(t *testing.T) {
	dir := NewDirectory([]Pharmacy{
		{NPI: "111", Chain: "cvs"},
		{NPI: "222", Chain: "walgreens"},
		{NPI: "", Chain: "orphan"},
		{NPI: "111", Chain: "cvs-updated"},
	})

	require.Len(t, dir, 2)

	chain, ok := dir.Chain("111")
	assert.True(t, ok)
	assert.Equal(t, "cvs-updated", chain, "last row for a duplicated NPI wins")

	_, ok = dir.Chain("999")
	assert.False(t, ok)
}

func TestFilterEligible(t *testing.T) {
	dir := NewDirectory([]Pharmacy{
		{NPI: "111", Chain: "cvs"},
		{NPI: "222", Chain: "walgreens"},
	})
	cs := []Claim{
		{ID: "c1", NPI: "111", NDC: "d1", Price: 10, Quantity: 30},
		{ID: "c2", NPI: "333", NDC: "d1", Price: 20, Quantity: 30},
		{ID: "c3", NPI: "222", NDC: "d2", Price: 5, Quantity: 60},
	}

	eligible := FilterEligible(cs, dir)

	require.Len(t, eligible, 2)
	assert.Equal(t, "c1", eligible[0].ID)
	assert.Equal(t, "c3", eligible[1].ID)
}

func TestFilterEligibleEmpty(t *testing.T) {
	assert.Empty(t, FilterEligible(nil, NewDirectory(nil)))
	assert.Empty(t, FilterEligible([]Claim{{ID: "c1", NPI: "111"}}, NewDirectory(nil)))
}
