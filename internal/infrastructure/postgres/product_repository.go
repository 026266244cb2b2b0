package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación del puerto ProductRepository sobre PostgreSQL (solo lectura).
// purchase_price es NUMERIC y se lee con el codec de shopspring/decimal registrado en el pool.
type ProductRepo struct {
	conn Connector
}

// NewProductRepository construye el adaptador de persistencia para productos.
func NewProductRepository(conn Connector) *ProductRepo {
	return &ProductRepo{conn: conn}
}

// GetByID obtiene un producto por ID; nil si no existe.
func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	query := `SELECT id, sku, name, purchase_price FROM products WHERE id = $1`
	var p entity.Product
	var price decimal.NullDecimal
	err = q.QueryRow(ctx, query, id).Scan(&p.ID, &p.SKU, &p.Name, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	if price.Valid {
		p.PurchasePrice = price.Decimal
	}
	return &p, nil
}

// GetByIDs obtiene varios productos indexados por ID; los inexistentes no aparecen.
func (r *ProductRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error) {
	out := make(map[int64]*entity.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT id, sku, name, purchase_price FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("get products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var p entity.Product
		var price decimal.NullDecimal
		if err := rows.Scan(&p.ID, &p.SKU, &p.Name, &price); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if price.Valid {
			p.PurchasePrice = price.Decimal
		}
		out[p.ID] = &p
	}
	return out, rows.Err()
}

// PurchasePricesCents precio de compra de cada producto en centavos. Sin precio = ausente (vale 0).
func (r *ProductRepo) PurchasePricesCents(ctx context.Context) (map[int64]int64, error) {
	q, err := r.conn.Querier(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := q.Query(ctx, `SELECT id, purchase_price FROM products WHERE purchase_price IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list purchase prices: %w", err)
	}
	defer rows.Close()
	prices := make(map[int64]int64)
	for rows.Next() {
		var id int64
		var price decimal.Decimal
		if err := rows.Scan(&id, &price); err != nil {
			return nil, fmt.Errorf("scan purchase price: %w", err)
		}
		prices[id] = inventory.ToCents(price)
	}
	return prices, rows.Err()
}
