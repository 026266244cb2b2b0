package repository

import (
	"context"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// StockLocationRepository catálogo de ubicaciones (colaborador, solo lectura).
type StockLocationRepository interface {
	ListIDs(ctx context.Context) ([]int64, error)
	GetByID(ctx context.Context, id int64) (*entity.StockLocation, error)
}
