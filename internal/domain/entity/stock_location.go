package entity

import "time"

// StockLocation ubicación física donde se almacena stock (bodega, tienda, reserva).
type StockLocation struct {
	ID        int64
	Code      string
	Name      string
	CreatedAt time.Time
}
