package market

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDefaultFormulaTable_CoversEveryProduct(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()
	assert.Equal(t, len(Products()), table.Len())

	for _, p := range Products() {
		f, err := table.Lookup(p)
		require.NoError(t, err, p)
		assert.Greater(t, f.Work, 0.0, p)
		if f.HasRawMaterial() {
			assert.True(t, f.RawMaterial.Valid(), p)
		}
	}
}

func TestDefaultFormulaTable_BuildsFromDefaults(t *testing.T) {
	t.Parallel()

	require.Len(t, productSet, len(products))
	require.Len(t, extendedSet, len(products)+len(nonProducts))

	table, err := NewFormulaTable(DefaultFormulaTable().Formulas())
	require.NoError(t, err)
	assert.Equal(t, len(Products()), table.Len())
}

func TestDefaultFormulaTable_KnownEntries(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()

	bread, err := table.Lookup(Bread)
	require.NoError(t, err)
	assert.Equal(t, Formula{Work: 10, RawMaterial: Grain, RawMaterialAmount: 10}, bread)

	lead, err := table.Lookup(Lead)
	require.NoError(t, err)
	assert.False(t, lead.HasRawMaterial())
	assert.Equal(t, 1.0, lead.Work)

	cocain, err := table.Lookup(Cocain)
	require.NoError(t, err)
	assert.Equal(t, 200.0, cocain.Work)
	assert.Equal(t, Coca, cocain.RawMaterial)
}

func TestFormula_Amount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 0.0, Formula{Work: 1, RawMaterialAmount: 5}.Amount(), "ignored without raw material")
	assert.Equal(t, 1.0, Formula{Work: 1, RawMaterial: Lead}.Amount(), "defaults to 1")
	assert.Equal(t, 16.0, Formula{Work: 16, RawMaterial: Lead, RawMaterialAmount: 16}.Amount())
}

func TestLookup_NotFound(t *testing.T) {
	t.Parallel()

	table := &FormulaTable{formulas: map[Product]Formula{Lead: {Work: 1}}}

	_, err := table.Lookup(Bread)
	require.Error(t, err)

	var nf *FormulaNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, Bread, nf.Product)
	assert.Contains(t, err.Error(), "bread")
}

func TestLookup_ReturnsCopy(t *testing.T) {
	t.Parallel()

	table := DefaultFormulaTable()
	f, err := table.Lookup(Steel)
	require.NoError(t, err)
	f.Work = 999

	again, err := table.Lookup(Steel)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.Work)

	all := table.Formulas()
	all[Steel] = Formula{Work: 1}
	again, err = table.Lookup(Steel)
	require.NoError(t, err)
	assert.Equal(t, 10.0, again.Work)
}

func TestNewFormulaTable_Validation(t *testing.T) {
	t.Parallel()

	valid := DefaultFormulaTable().Formulas()

	tests := []struct {
		name   string
		mutate func(m map[Product]Formula)
		want   string
	}{
		{
			name:   "missing product",
			mutate: func(m map[Product]Formula) { delete(m, Steak) },
			want:   "steak: missing formula",
		},
		{
			name:   "zero work",
			mutate: func(m map[Product]Formula) { m[Lead] = Formula{Work: 0} },
			want:   "lead: work must be a positive number",
		},
		{
			name:   "negative work",
			mutate: func(m map[Product]Formula) { m[Iron] = Formula{Work: -2} },
			want:   "iron: work must be a positive number",
		},
		{
			name:   "unknown product",
			mutate: func(m map[Product]Formula) { m["gold"] = Formula{Work: 1} },
			want:   "gold: unknown product",
		},
		{
			name:   "unknown raw material",
			mutate: func(m map[Product]Formula) { m[Bread] = Formula{Work: 10, RawMaterial: "flour"} },
			want:   `bread: unknown raw material "flour"`,
		},
		{
			name:   "negative amount",
			mutate: func(m map[Product]Formula) { m[Ammo] = Formula{Work: 4, RawMaterial: Lead, RawMaterialAmount: -1} },
			want:   "ammo: raw material amount must be >= 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(map[Product]Formula, len(valid))
			for k, v := range valid {
				m[k] = v
			}
			tt.mutate(m)

			_, err := NewFormulaTable(m)
			require.Error(t, err)

			var inv *InvalidTableError
			require.True(t, errors.As(err, &inv))
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNewFormulaTable_CopiesInput(t *testing.T) {
	t.Parallel()

	m := DefaultFormulaTable().Formulas()
	table, err := NewFormulaTable(m)
	require.NoError(t, err)

	m[Lead] = Formula{Work: 50}
	f, err := table.Lookup(Lead)
	require.NoError(t, err)
	assert.Equal(t, 1.0, f.Work)
}

func TestFormulaTable_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	out, err := yaml.Marshal(DefaultFormulaTable())
	require.NoError(t, err)
	assert.Contains(t, string(out), "formulas:")
	assert.Contains(t, string(out), "raw_material: grain")

	path := filepath.Join(t.TempDir(), "formulas.yaml")
	require.NoError(t, os.WriteFile(path, out, 0o644))

	loaded, err := LoadFormulaTable(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultFormulaTable().Formulas(), loaded.Formulas())
}

func TestLoadFormulaTable_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := LoadFormulaTable(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read formulas")

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("formulas: [1, 2"), 0o644))
	_, err = LoadFormulaTable(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse formulas")

	partial := filepath.Join(dir, "partial.yaml")
	require.NoError(t, os.WriteFile(partial, []byte("formulas:\n  lead: {work: 1}\n"), 0o644))
	_, err = LoadFormulaTable(partial)
	require.Error(t, err)
	var inv *InvalidTableError
	assert.True(t, errors.As(err, &inv))
	assert.Contains(t, err.Error(), "bread: missing formula")
}
