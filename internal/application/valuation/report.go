package valuation

import (
	"context"
	"errors"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// ErrReportUnavailable no hay generador de PDF configurado.
var ErrReportUnavailable = errors.New("informe PDF no disponible")

// Report genera el PDF de la serie de valorizaciones. Reutiliza la caché igual que GetDaily.
func (uc *UseCase) Report(ctx context.Context, days int, locationID *int64) (pdfBytes []byte, filename string, err error) {
	if uc.generator == nil {
		return nil, "", ErrReportUnavailable
	}
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, "", err
	}
	series, err := uc.GetDaily(ctx, days, locationID)
	if err != nil {
		return nil, "", err
	}

	label := "Todas las ubicaciones"
	if locationID != nil {
		loc, err := uc.locations.GetByID(ctx, *locationID)
		if err != nil {
			return nil, "", fmt.Errorf("valuation: ubicación: %w", err)
		}
		label = fmt.Sprintf("Ubicación %d", *locationID)
		if loc != nil && loc.Code != "" {
			label = fmt.Sprintf("%s (%s)", loc.Name, loc.Code)
		}
	}

	pdfBytes, err = uc.generator.GenerateValuationPDF(ctx, ReportData{
		TenantCode:    tc.TenantCode,
		LocationLabel: label,
		Series:        series,
	})
	if err != nil {
		return nil, "", fmt.Errorf("valuation: generar PDF: %w", err)
	}

	last := ""
	if n := len(series.Points); n > 0 {
		last = series.Points[n-1].ValuationDate
	}
	filename = fmt.Sprintf("valorizacion-%s-%s-%dd.pdf", tc.TenantCode, last, series.Days)
	return pdfBytes, filename, nil
}
