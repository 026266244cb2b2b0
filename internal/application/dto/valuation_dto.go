package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// Alcances de un punto de valorización.
const (
	ScopeAll      = "ALL"
	ScopeLocation = "LOCATION"
)

// ValuationPointDTO valor total del stock al cierre de un día.
type ValuationPointDTO struct {
	ValuationDate   string          `json:"valuation_date"` // YYYY-MM-DD (UTC)
	TotalValueCents int64           `json:"total_value_cents"`
	TotalValue      decimal.Decimal `json:"total_value"`
	Currency        string          `json:"currency"`
	Scope           string          `json:"scope"` // ALL | LOCATION
	StockLocationID *int64          `json:"stock_location_id,omitempty"`
	FromCache       bool            `json:"from_cache"` // true si la fila ya estaba persistida antes de la consulta
}

// ValuationSeriesDTO respuesta de GET /api/stock-valuations.
type ValuationSeriesDTO struct {
	Days       int                 `json:"days"`
	Truncated  bool                `json:"truncated,omitempty"` // days superaba el máximo configurado
	ComputedAt time.Time           `json:"computed_at"`
	Points     []ValuationPointDTO `json:"points"`
}

// PurgeCacheResponse respuesta de DELETE /api/stock-valuations/cache.
type PurgeCacheResponse struct {
	Deleted int64 `json:"deleted"`
}

// DisposalLineDTO bajas sin venta de un producto, por motivo.
type DisposalLineDTO struct {
	ProductID     int64            `json:"product_id"`
	SKU           string           `json:"sku,omitempty"`
	ProductName   string           `json:"product_name,omitempty"`
	Quantities    map[string]int64 `json:"quantities"`    // motivo -> unidades (positivas)
	AmountsCents  map[string]int64 `json:"amounts_cents"` // motivo -> unidades * precio de compra
	TotalQuantity int64            `json:"total_quantity"`
	TotalCents    int64            `json:"total_cents"`
}

// DisposalSummaryDTO respuesta de GET /api/stock-movements/disposals.
type DisposalSummaryDTO struct {
	From          *time.Time        `json:"from,omitempty"`
	To            *time.Time        `json:"to,omitempty"`
	Lines         []DisposalLineDTO `json:"lines"`
	TotalsCents   map[string]int64  `json:"totals_cents"` // motivo -> monto
	TotalQuantity int64             `json:"total_quantity"`
	TotalCents    int64             `json:"total_cents"`
}
