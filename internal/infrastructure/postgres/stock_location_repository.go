package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockLocationRepository = (*StockLocationRepo)(nil)

// StockLocationRepo ubicaciones de stock (solo lectura).
type StockLocationRepo struct {
	conn Connector
}

// NewStockLocationRepository construye el adaptador.
func NewStockLocationRepository(conn Connector) *StockLocationRepo {
	return &StockLocationRepo{conn: conn}
}

// ListIDs IDs de todas las ubicaciones en orden ascendente.
func (r *StockLocationRepo) ListIDs(ctx context.Context) ([]int64, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT id FROM stock_locations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list stock locations: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("scan stock location: %w", err)
	}
	return ids, nil
}

// GetByID obtiene una ubicación; nil si no existe.
func (r *StockLocationRepo) GetByID(ctx context.Context, id int64) (*entity.StockLocation, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	var l entity.StockLocation
	err = q.QueryRow(ctx, `SELECT id, code, name, created_at FROM stock_locations WHERE id = $1`, id).
		Scan(&l.ID, &l.Code, &l.Name, &l.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get stock location: %w", err)
	}
	return &l, nil
}
