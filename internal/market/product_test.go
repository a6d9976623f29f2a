package market

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProducts_Enumeration(t *testing.T) {
	t.Parallel()

	ps := Products()
	require.Len(t, ps, 16)
	assert.Equal(t, Lead, ps[0])
	assert.Equal(t, CookedFish, ps[len(ps)-1])

	// Callers get a copy.
	ps[0] = "mutated"
	assert.Equal(t, Lead, Products()[0])
}

func TestExtendedProducts_IncludesPriceOnlyItems(t *testing.T) {
	t.Parallel()

	es := ExtendedProducts()
	require.Len(t, es, 17)
	assert.Equal(t, Case1, es[len(es)-1])
	for _, p := range Products() {
		assert.Contains(t, es, p.Extended())
	}
}

func TestParseProduct(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want bool
	}{
		{"lead", true},
		{"cookedFish", true},
		{"heavyAmmo", true},
		{"case1", false},
		{"Lead", false},
		{"", false},
		{"gold", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			p, ok := ParseProduct(tt.in)
			assert.Equal(t, tt.want, ok)
			assert.Equal(t, tt.want, p.Valid())
		})
	}
}

func TestParseExtendedProduct(t *testing.T) {
	t.Parallel()

	e, ok := ParseExtendedProduct("case1")
	require.True(t, ok)
	assert.Equal(t, Case1, e)

	_, ok = ParseExtendedProduct("case2")
	assert.False(t, ok)
}

func TestExtendedProduct_Product(t *testing.T) {
	t.Parallel()

	p, ok := ExtendedProduct("bread").Product()
	require.True(t, ok)
	assert.Equal(t, Bread, p)

	_, ok = Case1.Product()
	assert.False(t, ok)
}

func TestLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Lead", Lead.Label())
	assert.Equal(t, "Cooked Fish", CookedFish.Label())
	assert.Equal(t, "Heavy Ammo", HeavyAmmo.Label())
	assert.Equal(t, "Light Ammo", LightAmmo.Extended().Label())
	assert.Equal(t, "Case 1", Case1.Label())
}
