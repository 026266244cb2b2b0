package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `id, product_id, stock_location_id, quantity_delta, reason, occurred_at, source_document_type, source_document_id`

// StockMovementRepo diario de movimientos sobre PostgreSQL (tabla stock_movements, solo inserción).
type StockMovementRepo struct {
	conn Connector
}

// NewStockMovementRepository construye el adaptador. Pasar TenantConnector o Static(tx).
func NewStockMovementRepository(conn Connector) *StockMovementRepo {
	return &StockMovementRepo{conn: conn}
}

// Create inserta el movimiento y completa su ID.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO stock_movements (product_id, stock_location_id, quantity_delta, reason, occurred_at, source_document_type, source_document_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`
	var docID *string
	if m.SourceDocumentID != "" {
		docID = &m.SourceDocumentID
	}
	err = q.QueryRow(ctx, query,
		m.ProductID, m.LocationID, m.QuantityDelta, m.Reason, m.OccurredAt, m.SourceDocumentType, docID,
	).Scan(&m.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("movimiento ya registrado para %s %s: %w", m.SourceDocumentType, m.SourceDocumentID, domain.ErrDuplicate)
		}
		if isForeignKeyViolation(err) {
			return fmt.Errorf("producto %d o ubicación %d: %w", m.ProductID, m.LocationID, domain.ErrNotFound)
		}
		return fmt.Errorf("create stock movement: %w", err)
	}
	return nil
}

// List lista movimientos del más reciente al más antiguo.
func (r *StockMovementRepo) List(ctx context.Context, filter repository.MovementFilter) ([]*entity.StockMovement, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + movementColumns + ` FROM stock_movements WHERE 1=1`
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
	if len(filter.Reasons) > 0 {
		query += fmt.Sprintf(" AND reason = ANY($%d)", pos)
		args = append(args, filter.Reasons)
		pos++
	}
	if filter.From != nil {
		query += fmt.Sprintf(" AND occurred_at >= $%d", pos)
		args = append(args, *filter.From)
		pos++
	}
	if filter.To != nil {
		query += fmt.Sprintf(" AND occurred_at <= $%d", pos)
		args = append(args, *filter.To)
	}
	query += " ORDER BY occurred_at DESC, id DESC"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	defer rows.Close()
	var list []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, &m)
	}
	return list, rows.Err()
}

// SumDeltas suma los deltas del par con occurred_at en (after, upTo].
func (r *StockMovementRepo) SumDeltas(ctx context.Context, productID, locationID int64, after *time.Time, upTo time.Time) (int64, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return 0, err
	}
	var b strings.Builder
	b.WriteString(`
		SELECT COALESCE(SUM(quantity_delta), 0)::bigint
		FROM stock_movements
		WHERE product_id = $1 AND stock_location_id = $2 AND occurred_at <= $3`)
	args := []any{productID, locationID, upTo}
	if after != nil {
		b.WriteString(" AND occurred_at > $4")
		args = append(args, *after)
	}
	var sum int64
	if err := q.QueryRow(ctx, b.String(), args...).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum stock movements: %w", err)
	}
	return sum, nil
}

// ListUpTo devuelve los movimientos con occurred_at <= cutoff que no quedan cubiertos
// por el último inventario de su par. Los movimientos omitidos no alteran el plegado.
func (r *StockMovementRepo) ListUpTo(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.StockMovement, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		WITH latest AS (
			SELECT product_id, stock_location_id, MAX(captured_at) AS captured_at
			FROM inventories
			WHERE captured_at <= $1 AND ($2::bigint IS NULL OR product_id = $2)
			GROUP BY product_id, stock_location_id
		)
		SELECT m.id, m.product_id, m.stock_location_id, m.quantity_delta, m.reason, m.occurred_at,
		       m.source_document_type, m.source_document_id
		FROM stock_movements m
		LEFT JOIN latest l ON l.product_id = m.product_id AND l.stock_location_id = m.stock_location_id
		WHERE m.occurred_at <= $1
		  AND ($2::bigint IS NULL OR m.product_id = $2)
		  AND (l.captured_at IS NULL OR m.occurred_at > l.captured_at)`
	rows, err := q.Query(ctx, query, cutoff, productID)
	if err != nil {
		return nil, fmt.Errorf("list stock movements up to cutoff: %w", err)
	}
	defer rows.Close()
	var list []entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

func scanMovement(rows pgx.Rows) (entity.StockMovement, error) {
	var m entity.StockMovement
	var docID *string
	if err := rows.Scan(&m.ID, &m.ProductID, &m.LocationID, &m.QuantityDelta, &m.Reason,
		&m.OccurredAt, &m.SourceDocumentType, &docID); err != nil {
		return m, fmt.Errorf("scan stock movement: %w", err)
	}
	if docID != nil {
		m.SourceDocumentID = *docID
	}
	return m, nil
}
