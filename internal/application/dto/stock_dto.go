package dto

import "time"

// StockResponse cantidad reconstruida de un producto (en una ubicación o en todas).
type StockResponse struct {
	ProductID       int64     `json:"product_id"`
	StockLocationID *int64    `json:"stock_location_id,omitempty"` // nil = todas las ubicaciones
	At              time.Time `json:"at"`
	Stock           int64     `json:"stock"`
}

// MovementDTO movimiento de stock en respuestas.
type MovementDTO struct {
	ID                 int64     `json:"id"`
	ProductID          int64     `json:"product_id"`
	StockLocationID    int64     `json:"stock_location_id"`
	QuantityDelta      int64     `json:"quantity_delta"`
	Reason             string    `json:"reason"`
	OccurredAt         time.Time `json:"occurred_at"`
	SourceDocumentType string    `json:"source_document_type"`
	SourceDocumentID   string    `json:"source_document_id,omitempty"`
}

// CreateMovementRequest un movimiento dentro de POST /api/stock-movements.
type CreateMovementRequest struct {
	ProductID          int64      `json:"product_id" validate:"required,gt=0"`
	StockLocationID    int64      `json:"stock_location_id" validate:"required,gt=0"`
	QuantityDelta      int64      `json:"quantity_delta" validate:"required,ne=0"`
	Reason             string     `json:"reason" validate:"omitempty,oneof=SALE PURCHASE_RECEIPT DONATION DISPOSAL PERSONAL_USE ADJUSTMENT UNKNOWN"`
	OccurredAt         *time.Time `json:"occurred_at,omitempty"` // nil = ahora
	SourceDocumentType string     `json:"source_document_type" validate:"omitempty,oneof=INVOICE CREDIT_NOTE DELIVERY_NOTE OTHER"`
	SourceDocumentID   string     `json:"source_document_id,omitempty" validate:"max=64"`
}

// CreateMovementsRequest body de POST /api/stock-movements (alta en lote, atómica).
type CreateMovementsRequest struct {
	Movements []CreateMovementRequest `json:"movements" validate:"required,min=1,max=500,dive"`
}

// SnapshotDTO inventario (conteo) en respuestas.
type SnapshotDTO struct {
	ID              int64     `json:"id"`
	ProductID       int64     `json:"product_id"`
	StockLocationID int64     `json:"stock_location_id"`
	Quantity        int64     `json:"quantity"`
	CapturedAt      time.Time `json:"captured_at"`
}

// CreateSnapshotRequest un conteo dentro de POST /api/inventories.
type CreateSnapshotRequest struct {
	ProductID       int64      `json:"product_id" validate:"required,gt=0"`
	StockLocationID int64      `json:"stock_location_id" validate:"required,gt=0"`
	Quantity        int64      `json:"quantity" validate:"gte=0"`
	CapturedAt      *time.Time `json:"captured_at,omitempty"` // nil = ahora
}

// CreateSnapshotsRequest body de POST /api/inventories.
type CreateSnapshotsRequest struct {
	Inventories []CreateSnapshotRequest `json:"inventories" validate:"required,min=1,max=500,dive"`
}
