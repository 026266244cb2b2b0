package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// ProductRepository catálogo de productos (colaborador, solo lectura).
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error)
	// PurchasePricesCents precio de compra de cada producto en centavos.
	PurchasePricesCents(ctx context.Context) (map[int64]int64, error)
}
