package inventory

// Valuation valor del stock en centavos, por ubicación y total.
type Valuation struct {
	PerLocation map[int64]int64
	TotalCents  int64
}

// Value multiplica la cantidad de cada par por el precio unitario del producto (centavos).
// Productos sin precio valen 0. Las cantidades negativas restan: no se recortan.
func Value(quantities map[PairKey]int64, pricesCents map[int64]int64) Valuation {
	v := Valuation{PerLocation: make(map[int64]int64)}
	for key, qty := range quantities {
		value := qty * pricesCents[key.ProductID]
		v.PerLocation[key.LocationID] += value
		v.TotalCents += value
	}
	return v
}
