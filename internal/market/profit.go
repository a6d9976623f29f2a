package market

// ComputeProfit returns the profit earned per work unit when producing one
// unit of product at the prices in snap:
//
//	(price(product) - price(rawMaterial) * amount) / work
//
// The result is not rounded. A price missing from snap propagates as NaN.
func ComputeProfit(table *FormulaTable, snap PriceSnapshot, product Product) (float64, error) {
	f, err := table.Lookup(product)
	if err != nil {
		return 0, err
	}

	var rawMaterialCost float64
	if f.HasRawMaterial() {
		rawMaterialCost = snap.Price(f.RawMaterial.Extended()) * f.Amount()
	}

	return (snap.Price(product.Extended()) - rawMaterialCost) / f.Work, nil
}

// EligibleProducts returns the snapshot keys that are Products, in
// enumeration order. Price-only items such as Case1 are excluded.
func EligibleProducts(snap PriceSnapshot) []Product {
	var eligible []Product
	for _, e := range snap.Keys() {
		if p, ok := e.Product(); ok {
			eligible = append(eligible, p)
		}
	}
	return eligible
}
