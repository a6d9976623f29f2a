// Package market defines the tradable goods, their production formulas and
// the work-unit profit calculation derived from a price snapshot.
package market

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Product identifies a good that can be produced and therefore has a formula.
type Product string

const (
	Lead       Product = "lead"
	Coca       Product = "coca"
	Iron       Product = "iron"
	Fish       Product = "fish"
	Livestock  Product = "livestock"
	Grain      Product = "grain"
	Limestone  Product = "limestone"
	LightAmmo  Product = "lightAmmo"
	Bread      Product = "bread"
	Steel      Product = "steel"
	Concrete   Product = "concrete"
	Ammo       Product = "ammo"
	Steak      Product = "steak"
	HeavyAmmo  Product = "heavyAmmo"
	Cocain     Product = "cocain"
	CookedFish Product = "cookedFish"
)

// ExtendedProduct identifies anything that is quoted by the price API. It is
// a superset of Product.
type ExtendedProduct string

// Case1 is a lootbox item. It has a market price but is never produced.
const Case1 ExtendedProduct = "case1"

var products = []Product{
	Lead, Coca, Iron, Fish, Livestock, Grain, Limestone,
	LightAmmo, Bread, Steel, Concrete, Ammo, Steak, HeavyAmmo, Cocain, CookedFish,
}

var nonProducts = []ExtendedProduct{Case1}

var productSet, extendedSet = buildSets()

func buildSets() (map[Product]int, map[ExtendedProduct]int) {
	ps := make(map[Product]int, len(products))
	es := make(map[ExtendedProduct]int, len(products)+len(nonProducts))
	for i, p := range products {
		ps[p] = i
		es[ExtendedProduct(p)] = i
	}
	for i, e := range nonProducts {
		es[e] = len(products) + i
	}
	return ps, es
}

// Products returns every Product in enumeration order.
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ExtendedProducts returns every ExtendedProduct in enumeration order:
// producible goods first, then price-only items.
func ExtendedProducts() []ExtendedProduct {
	out := make([]ExtendedProduct, 0, len(products)+len(nonProducts))
	for _, p := range products {
		out = append(out, ExtendedProduct(p))
	}
	return append(out, nonProducts...)
}

// ParseProduct validates s against the Product enumeration.
func ParseProduct(s string) (Product, bool) {
	p := Product(s)
	_, ok := productSet[p]
	return p, ok
}

// ParseExtendedProduct validates s against the ExtendedProduct enumeration.
func ParseExtendedProduct(s string) (ExtendedProduct, bool) {
	e := ExtendedProduct(s)
	_, ok := extendedSet[e]
	return e, ok
}

// Valid reports whether p is a member of the Product enumeration.
func (p Product) Valid() bool {
	_, ok := productSet[p]
	return ok
}

// Extended widens p to an ExtendedProduct.
func (p Product) Extended() ExtendedProduct {
	return ExtendedProduct(p)
}

// Label returns a display name such as "Cooked Fish".
func (p Product) Label() string {
	return label(string(p))
}

func (p Product) String() string { return string(p) }

// Valid reports whether e is a member of the ExtendedProduct enumeration.
func (e ExtendedProduct) Valid() bool {
	_, ok := extendedSet[e]
	return ok
}

// Product narrows e to a Product. The second value is false for price-only
// items such as Case1.
func (e ExtendedProduct) Product() (Product, bool) {
	return ParseProduct(string(e))
}

// Label returns a display name such as "Heavy Ammo".
func (e ExtendedProduct) Label() string {
	return label(string(e))
}

func (e ExtendedProduct) String() string { return string(e) }

// order returns the enumeration index used for stable sorting.
func (e ExtendedProduct) order() int {
	if i, ok := extendedSet[e]; ok {
		return i
	}
	return len(extendedSet)
}

// label splits a camelCase identifier into words and title-cases them.
// A Caser is stateful, so each call builds its own.
func label(id string) string {
	var b strings.Builder
	for i, r := range id {
		if i > 0 && (unicode.IsUpper(r) || (unicode.IsDigit(r) && !unicode.IsDigit(rune(id[i-1])))) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return cases.Title(language.English).String(b.String())
}
