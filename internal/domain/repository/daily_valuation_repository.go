package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// DailyValuationRepository puerto de la caché durable de valorizaciones diarias.
type DailyValuationRepository interface {
	// ListRange devuelve las filas con valuation_date en [from, toExclusive) y scope_key en scopeKeys.
	ListRange(ctx context.Context, from, toExclusive time.Time, scopeKeys []string) ([]entity.DailyValuation, error)
	// Upsert inserta o reemplaza las filas por (valuation_date, scope_key).
	Upsert(ctx context.Context, rows []entity.DailyValuation) error
	// Truncate vacía la caché completa; devuelve las filas eliminadas.
	Truncate(ctx context.Context) (int64, error)
}
