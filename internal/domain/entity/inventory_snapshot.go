package entity

import "time"

// InventorySnapshot conteo autoritativo de stock de un producto en una ubicación
// en un instante dado (inventario físico o importación correctiva). Inmutable.
type InventorySnapshot struct {
	ID         int64
	ProductID  int64
	LocationID int64
	Quantity   int64
	CapturedAt time.Time
}
