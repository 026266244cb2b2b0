package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.InventorySnapshotRepository = (*InventorySnapshotRepo)(nil)

// InventorySnapshotRepo inventarios (conteos) sobre PostgreSQL, tabla inventories.
type InventorySnapshotRepo struct {
	conn Connector
}

// NewInventorySnapshotRepository construye el adaptador.
func NewInventorySnapshotRepository(conn Connector) *InventorySnapshotRepo {
	return &InventorySnapshotRepo{conn: conn}
}

// Create inserta el inventario y completa su ID.
func (r *InventorySnapshotRepo) Create(ctx context.Context, s *entity.InventorySnapshot) error {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO inventories (product_id, stock_location_id, quantity, captured_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := q.QueryRow(ctx, query, s.ProductID, s.LocationID, s.Quantity, s.CapturedAt).Scan(&s.ID); err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto %d o ubicación %d: %w", s.ProductID, s.LocationID, domain.ErrNotFound)
		}
		return fmt.Errorf("create inventory: %w", err)
	}
	return nil
}

// List lista inventarios del más reciente al más antiguo.
func (r *InventorySnapshotRepo) List(ctx context.Context, filter repository.SnapshotFilter) ([]*entity.InventorySnapshot, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, product_id, stock_location_id, quantity, captured_at FROM inventories WHERE 1=1`
	var args []any
	pos := 1
	if filter.ProductID != nil {
		query += fmt.Sprintf(" AND product_id = $%d", pos)
		args = append(args, *filter.ProductID)
		pos++
	}
	if filter.LocationID != nil {
		query += fmt.Sprintf(" AND stock_location_id = $%d", pos)
		args = append(args, *filter.LocationID)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND captured_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND captured_at <= $%d", pos)
		args = append(args, *filter.To)
	}
	query += " ORDER BY captured_at DESC, id DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list inventories: %w", err)
	}
	defer rows.Close()
	var list []*entity.InventorySnapshot
	for rows.Next() {
		var s entity.InventorySnapshot
		if err := rows.Scan(&s.ID, &s.ProductID, &s.LocationID, &s.Quantity, &s.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, &s)
	}
	return list, rows.Err()
}

// LatestAtOrBefore último inventario del par con captured_at <= at; nil si no hay.
func (r *InventorySnapshotRepo) LatestAtOrBefore(ctx context.Context, productID, locationID int64, at time.Time) (*entity.InventorySnapshot, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT id, product_id, stock_location_id, quantity, captured_at
		FROM inventories
		WHERE product_id = $1 AND stock_location_id = $2 AND captured_at <= $3
		ORDER BY captured_at DESC, id DESC
		LIMIT 1`
	var s entity.InventorySnapshot
	err = q.QueryRow(ctx, query, productID, locationID, at).Scan(&s.ID, &s.ProductID, &s.LocationID, &s.Quantity, &s.CapturedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest inventory: %w", err)
	}
	return &s, nil
}

// LatestPerPair último inventario de cada par con captured_at <= cutoff.
func (r *InventorySnapshotRepo) LatestPerPair(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.InventorySnapshot, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		SELECT DISTINCT ON (product_id, stock_location_id)
		       id, product_id, stock_location_id, quantity, captured_at
		FROM inventories
		WHERE captured_at <= $1 AND ($2::bigint IS NULL OR product_id = $2)
		ORDER BY product_id, stock_location_id, captured_at DESC, id DESC`
	rows, err := q.Query(ctx, query, cutoff, productID)
	if err != nil {
		return nil, fmt.Errorf("latest inventories per pair: %w", err)
	}
	defer rows.Close()
	var list []entity.InventorySnapshot
	for rows.Next() {
		var s entity.InventorySnapshot
		if err := rows.Scan(&s.ID, &s.ProductID, &s.LocationID, &s.Quantity, &s.CapturedAt); err != nil {
			return nil, fmt.Errorf("scan inventory: %w", err)
		}
		list = append(list, s)
	}
	return list, rows.Err()
}
