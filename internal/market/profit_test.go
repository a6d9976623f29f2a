package market

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fullSnapshot quotes every ExtendedProduct with a distinct price.
func fullSnapshot() PriceSnapshot {
	snap := make(PriceSnapshot)
	for i, e := range ExtendedProducts() {
		snap[e] = float64(i+1) * 1.5
	}
	return snap
}

func TestComputeProfit_Examples(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()

	snap := fullSnapshot()
	snap[Bread.Extended()] = 50
	snap[Grain.Extended()] = 2
	snap[Lead.Extended()] = 7

	got, err := ComputeProfit(table, snap, Bread)
	require.NoError(t, err)
	assert.Equal(t, 3.0, got)

	got, err = ComputeProfit(table, snap, Lead)
	require.NoError(t, err)
	assert.Equal(t, 7.0, got)
}

func TestComputeProfit_PrimaryResources(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()
	snap := fullSnapshot()

	for _, p := range Products() {
		f, err := table.Lookup(p)
		require.NoError(t, err)
		if f.HasRawMaterial() {
			continue
		}
		got, err := ComputeProfit(table, snap, p)
		require.NoError(t, err)
		assert.Equal(t, snap[p.Extended()]/f.Work, got, p)
	}
}

func TestComputeProfit_ManufacturedGoods(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()
	snap := fullSnapshot()

	for _, p := range Products() {
		f, err := table.Lookup(p)
		require.NoError(t, err)
		if !f.HasRawMaterial() {
			continue
		}
		want := (snap[p.Extended()] - snap[f.RawMaterial.Extended()]*f.RawMaterialAmount) / f.Work
		got, err := ComputeProfit(table, snap, p)
		require.NoError(t, err)
		assert.Equal(t, want, got, p)
	}
}

func TestComputeProfit_AmountDefaultsToOne(t *testing.T) {
	t.Parallel()

	m := DefaultFormulaTable().Formulas()
	m[Steak] = Formula{Work: 4, RawMaterial: Livestock}
	table, err := NewFormulaTable(m)
	require.NoError(t, err)

	snap := PriceSnapshot{Steak.Extended(): 10, Livestock.Extended(): 2}
	got, err := ComputeProfit(table, snap, Steak)
	require.NoError(t, err)
	assert.Equal(t, 2.0, got)
}

func TestComputeProfit_NegativeAndFractional(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()

	snap := PriceSnapshot{HeavyAmmo.Extended(): 1, Lead.Extended(): 0.5}
	got, err := ComputeProfit(table, snap, HeavyAmmo)
	require.NoError(t, err)
	assert.Equal(t, (1-0.5*16)/16.0, got)
	assert.Less(t, got, 0.0)

	snap = PriceSnapshot{Fish.Extended(): 1}
	got, err = ComputeProfit(table, snap, Fish)
	require.NoError(t, err)
	assert.Equal(t, 0.025, got)
}

func TestComputeProfit_MissingPriceIsNaN(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()

	got, err := ComputeProfit(table, PriceSnapshot{Bread.Extended(): 50}, Bread)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))

	got, err = ComputeProfit(table, PriceSnapshot{Grain.Extended(): 5}, Bread)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got))
}

func TestComputeProfit_FormulaNotFound(t *testing.T) {
	t.Parallel()

	table := &FormulaTable{formulas: map[Product]Formula{Lead: {Work: 1}}}

	_, err := ComputeProfit(table, fullSnapshot(), Steel)
	var nf *FormulaNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, Steel, nf.Product)
}

func TestEligibleProducts(t *testing.T) {
	t.Parallel()

	snap := PriceSnapshot{
		Case1:                 3,
		Bread.Extended():      50,
		Lead.Extended():       7,
		CookedFish.Extended(): 12,
	}

	got := EligibleProducts(snap)
	assert.Equal(t, []Product{Lead, Bread, CookedFish}, got)
	assert.NotContains(t, got, Product(Case1))
}

func TestEligibleProducts_FullSnapshot(t *testing.T) {
	t.Parallel()

	assert.Equal(t, Products(), EligibleProducts(fullSnapshot()))
	assert.Empty(t, EligibleProducts(PriceSnapshot{Case1: 1}))
}
