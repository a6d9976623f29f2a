package market

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Formula describes how one unit of a Product is produced.
type Formula struct {
	// Work is the number of work units needed per unit produced. Always > 0.
	Work float64 `yaml:"work" json:"work"`
	// RawMaterial is the consumed input. Empty for primary resources.
	RawMaterial Product `yaml:"raw_material,omitempty" json:"raw_material,omitempty"`
	// RawMaterialAmount is the input quantity per unit. Zero means 1 when a
	// RawMaterial is set and is ignored otherwise.
	RawMaterialAmount float64 `yaml:"raw_material_amount,omitempty" json:"raw_material_amount,omitempty"`
}

// HasRawMaterial reports whether the formula consumes an input.
func (f Formula) HasRawMaterial() bool {
	return f.RawMaterial != ""
}

// Amount returns the effective raw material quantity.
func (f Formula) Amount() float64 {
	if !f.HasRawMaterial() {
		return 0
	}
	if f.RawMaterialAmount == 0 {
		return 1
	}
	return f.RawMaterialAmount
}

// FormulaNotFoundError is returned when a Product has no table entry.
type FormulaNotFoundError struct {
	Product Product
}

func (e *FormulaNotFoundError) Error() string {
	return fmt.Sprintf("market: no formula found for product %q", string(e.Product))
}

// InvalidTableError lists every integrity problem found while building a
// FormulaTable.
type InvalidTableError struct {
	Problems []string
}

func (e *InvalidTableError) Error() string {
	return "market: invalid formula table: " + strings.Join(e.Problems, "; ")
}

// FormulaTable is an immutable Product -> Formula mapping that covers every
// Product exactly once.
type FormulaTable struct {
	formulas map[Product]Formula
}

// NewFormulaTable validates formulas and copies them into a FormulaTable.
func NewFormulaTable(formulas map[Product]Formula) (*FormulaTable, error) {
	var problems []string

	for _, p := range products {
		if _, ok := formulas[p]; !ok {
			problems = append(problems, fmt.Sprintf("%s: missing formula", p))
		}
	}

	keys := make([]Product, 0, len(formulas))
	for p := range formulas {
		keys = append(keys, p)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := keys[i].Extended().order(), keys[j].Extended().order()
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})

	table := make(map[Product]Formula, len(formulas))
	for _, p := range keys {
		f := formulas[p]
		if !p.Valid() {
			problems = append(problems, fmt.Sprintf("%s: unknown product", p))
			continue
		}
		if !(f.Work > 0) || math.IsInf(f.Work, 0) {
			problems = append(problems, fmt.Sprintf("%s: work must be a positive number, got %v", p, f.Work))
		}
		if f.HasRawMaterial() {
			if !f.RawMaterial.Valid() {
				problems = append(problems, fmt.Sprintf("%s: unknown raw material %q", p, string(f.RawMaterial)))
			}
			if f.RawMaterialAmount < 0 || math.IsNaN(f.RawMaterialAmount) || math.IsInf(f.RawMaterialAmount, 0) {
				problems = append(problems, fmt.Sprintf("%s: raw material amount must be >= 0, got %v", p, f.RawMaterialAmount))
			}
		}
		table[p] = f
	}

	if len(problems) > 0 {
		return nil, &InvalidTableError{Problems: problems}
	}
	return &FormulaTable{formulas: table}, nil
}

// Lookup returns a copy of the formula for p.
func (t *FormulaTable) Lookup(p Product) (Formula, error) {
	f, ok := t.formulas[p]
	if !ok {
		return Formula{}, &FormulaNotFoundError{Product: p}
	}
	return f, nil
}

// Len returns the number of formulas in the table.
func (t *FormulaTable) Len() int {
	return len(t.formulas)
}

// Formulas returns a copy of the underlying mapping.
func (t *FormulaTable) Formulas() map[Product]Formula {
	out := make(map[Product]Formula, len(t.formulas))
	for p, f := range t.formulas {
		out[p] = f
	}
	return out
}

// MarshalYAML renders the table in enumeration order under a "formulas" key,
// the same layout LoadFormulaTable reads.
func (t *FormulaTable) MarshalYAML() (any, error) {
	entries := &yaml.Node{Kind: yaml.MappingNode}
	for _, p := range products {
		f, ok := t.formulas[p]
		if !ok {
			continue
		}
		var value yaml.Node
		if err := value.Encode(f); err != nil {
			return nil, eris.Wrapf(err, "market: encode formula %s", p)
		}
		entries.Content = append(entries.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: string(p)},
			&value,
		)
	}
	return &yaml.Node{
		Kind: yaml.MappingNode,
		Content: []*yaml.Node{
			{Kind: yaml.ScalarNode, Value: "formulas"},
			entries,
		},
	}, nil
}

// LoadFormulaTable reads a YAML formula file of the form
//
//	formulas:
//	  bread: {work: 10, raw_material: grain, raw_material_amount: 10}
//
// and validates it like NewFormulaTable.
func LoadFormulaTable(path string) (*FormulaTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "market: read formulas %s", path)
	}

	var file struct {
		Formulas map[Product]Formula `yaml:"formulas"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, eris.Wrap(err, "market: parse formulas")
	}

	t, err := NewFormulaTable(file.Formulas)
	if err != nil {
		return nil, eris.Wrapf(err, "market: load formulas %s", path)
	}
	return t, nil
}

var defaultTable = mustFormulaTable(map[Product]Formula{
	Lead:       {Work: 1},
	Coca:       {Work: 1},
	Iron:       {Work: 1},
	Fish:       {Work: 40},
	Livestock:  {Work: 20},
	Grain:      {Work: 1},
	Limestone:  {Work: 1},
	LightAmmo:  {Work: 1, RawMaterial: Lead, RawMaterialAmount: 1},
	Bread:      {Work: 10, RawMaterial: Grain, RawMaterialAmount: 10},
	Steel:      {Work: 10, RawMaterial: Iron, RawMaterialAmount: 10},
	Concrete:   {Work: 10, RawMaterial: Limestone, RawMaterialAmount: 10},
	Ammo:       {Work: 4, RawMaterial: Lead, RawMaterialAmount: 4},
	Steak:      {Work: 20, RawMaterial: Livestock, RawMaterialAmount: 1},
	HeavyAmmo:  {Work: 16, RawMaterial: Lead, RawMaterialAmount: 16},
	Cocain:     {Work: 200, RawMaterial: Coca, RawMaterialAmount: 200},
	CookedFish: {Work: 40, RawMaterial: Fish, RawMaterialAmount: 1},
})

// DefaultFormulaTable returns the built-in production formulas.
func DefaultFormulaTable() *FormulaTable {
	return defaultTable
}

func mustFormulaTable(formulas map[Product]Formula) *FormulaTable {
	t, err := NewFormulaTable(formulas)
	if err != nil {
		panic(err)
	}
	return t
}
