package entity

import "time"

// Motivos de movimiento de stock.
const (
	ReasonSale            = "SALE"
	ReasonPurchaseReceipt = "PURCHASE_RECEIPT"
	ReasonDonation        = "DONATION"
	ReasonDisposal        = "DISPOSAL"
	ReasonPersonalUse     = "PERSONAL_USE"
	ReasonAdjustment      = "ADJUSTMENT"
	ReasonUnknown         = "UNKNOWN"
)

// Tipos de documento origen de un movimiento.
const (
	DocumentInvoice      = "INVOICE"
	DocumentCreditNote   = "CREDIT_NOTE"
	DocumentDeliveryNote = "DELIVERY_NOTE"
	DocumentOther        = "OTHER"
)

// DisposalReasons motivos que cuentan como salida sin venta (resumen de bajas).
var DisposalReasons = []string{ReasonDonation, ReasonDisposal, ReasonPersonalUse}

// StockMovement variación firmada de stock de un producto en una ubicación.
// Append-only: nunca se modifica ni se borra en operación normal.
type StockMovement struct {
	ID                 int64
	ProductID          int64
	LocationID         int64
	QuantityDelta      int64 // distinto de cero; negativo = salida
	Reason             string
	OccurredAt         time.Time
	SourceDocumentType string
	SourceDocumentID   string
}

// IsKnownReason indica si reason pertenece al catálogo de motivos.
func IsKnownReason(reason string) bool {
	switch reason {
	case ReasonSale, ReasonPurchaseReceipt, ReasonDonation, ReasonDisposal,
		ReasonPersonalUse, ReasonAdjustment, ReasonUnknown:
		return true
	}
	return false
}
