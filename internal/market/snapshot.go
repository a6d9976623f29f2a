package market

import (
	"math"
	"sort"
)

// PriceSnapshot maps each quoted item to its unit price at one instant.
type PriceSnapshot map[ExtendedProduct]float64

// NewPriceSnapshot keeps the recognised keys of raw and returns the rest,
// sorted, so callers can report them. A nil price counts as not quoted, so
// Price reports NaN for it and Missing lists it.
func NewPriceSnapshot(raw map[string]*float64) (PriceSnapshot, []string) {
	snap := make(PriceSnapshot, len(raw))
	var unknown []string
	for k, v := range raw {
		e, ok := ParseExtendedProduct(k)
		if !ok {
			unknown = append(unknown, k)
			continue
		}
		if v == nil {
			continue
		}
		snap[e] = *v
	}
	sort.Strings(unknown)
	return snap, unknown
}

// Price returns the unit price of e, or NaN when e is not quoted.
func (s PriceSnapshot) Price(e ExtendedProduct) float64 {
	v, ok := s[e]
	if !ok {
		return math.NaN()
	}
	return v
}

// Keys returns the quoted items in enumeration order.
func (s PriceSnapshot) Keys() []ExtendedProduct {
	keys := make([]ExtendedProduct, 0, len(s))
	for e := range s {
		keys = append(keys, e)
	}
	sort.Slice(keys, func(i, j int) bool {
		oi, oj := keys[i].order(), keys[j].order()
		if oi != oj {
			return oi < oj
		}
		return keys[i] < keys[j]
	})
	return keys
}

// Missing returns every ExtendedProduct the snapshot does not quote.
func (s PriceSnapshot) Missing() []ExtendedProduct {
	var missing []ExtendedProduct
	for _, e := range ExtendedProducts() {
		if _, ok := s[e]; !ok {
			missing = append(missing, e)
		}
	}
	return missing
}

// Complete reports whether every ExtendedProduct is quoted.
func (s PriceSnapshot) Complete() bool {
	return len(s.Missing()) == 0
}
