package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.DailyValuationRepository = (*DailyValuationRepo)(nil)

// DailyValuationRepo caché de valorizaciones diarias, tabla daily_stock_valuations.
type DailyValuationRepo struct {
	conn Connector
}

// NewDailyValuationRepository construye el adaptador.
func NewDailyValuationRepository(conn Connector) *DailyValuationRepo {
	return &DailyValuationRepo{conn: conn}
}

// ListRange filas con valuation_date en [from, toExclusive) para los scopes indicados.
func (r *DailyValuationRepo) ListRange(ctx context.Context, from, toExclusive time.Time, scopeKeys []string) ([]entity.DailyValuation, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT valuation_date, scope_key, stock_location_id, total_value_cents, currency, computed_at
		FROM daily_stock_valuations
		WHERE valuation_date >= $1 AND valuation_date < $2 AND scope_key = ANY($3)
		ORDER BY valuation_date, scope_key`
	rows, err := q.Query(ctx, query, from, toExclusive, scopeKeys)
	if err != nil {
		return nil, fmt.Errorf("list daily valuations: %w", err)
	}
	defer rows.Close()
	var list []entity.DailyValuation
	for rows.Next() {
		var v entity.DailyValuation
		if err := rows.Scan(&v.ValuationDate, &v.ScopeKey, &v.LocationID, &v.TotalValueCents, &v.Currency, &v.ComputedAt); err != nil {
			return nil, fmt.Errorf("scan daily valuation: %w", err)
		}
		v.ValuationDate = v.ValuationDate.UTC()
		list = append(list, v)
	}
	return list, rows.Err()
}

// Upsert inserta o reemplaza cada fila por (valuation_date, scope_key).
// Usar dentro de una tx para que el día quede completo o no quede.
func (r *DailyValuationRepo) Upsert(ctx context.Context, rows []entity.DailyValuation) error {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO daily_stock_valuations (valuation_date, scope_key, stock_location_id, total_value_cents, currency, computed_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (valuation_date, scope_key) DO UPDATE SET
			stock_location_id = EXCLUDED.stock_location_id,
			total_value_cents = EXCLUDED.total_value_cents,
			currency = EXCLUDED.currency,
			computed_at = EXCLUDED.computed_at`
	for _, v := range rows {
		if _, err := q.Exec(ctx, query, v.ValuationDate, v.ScopeKey, v.LocationID, v.TotalValueCents, v.Currency, v.ComputedAt); err != nil {
			return fmt.Errorf("upsert daily valuation %s %s: %w", v.ValuationDate.Format(time.DateOnly), v.ScopeKey, err)
		}
	}
	return nil
}

// Truncate borra toda la caché del tenant.
func (r *DailyValuationRepo) Truncate(ctx context.Context) (int64, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return 0, err
	}
	tag, err := q.Exec(ctx, `DELETE FROM daily_stock_valuations`)
	if err != nil {
		return 0, fmt.Errorf("truncate daily valuations: %w", err)
	}
	return tag.RowsAffected(), nil
}
