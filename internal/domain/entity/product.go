package entity

import "github.com/shopspring/decimal"

// Product datos de catálogo que el motor de stock necesita (solo lectura).
type Product struct {
	ID            int64
	SKU           string
	Name          string
	PurchasePrice decimal.Decimal // precio de compra HT, NUMERIC en base de datos
}
