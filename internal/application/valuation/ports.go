package valuation

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// TxRunner ejecuta fn en una transacción con la caché atada a ella.
// Se usa una transacción por día valorizado, nunca una para todo el rango.
type TxRunner interface {
	RunValuation(ctx context.Context, fn func(valRepo repository.DailyValuationRepository) error) error
}

// ReportData contenido del informe PDF de valorizaciones.
type ReportData struct {
	TenantCode    string
	LocationLabel string // "Todas las ubicaciones" o código de la ubicación
	Series        *dto.ValuationSeriesDTO
}

// ReportGenerator genera la representación PDF de una serie de valorizaciones.
type ReportGenerator interface {
	GenerateValuationPDF(ctx context.Context, data ReportData) ([]byte, error)
}
