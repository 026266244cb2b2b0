package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// SnapshotFilter criterios de listado de inventarios.
type SnapshotFilter struct {
	ProductID  *int64
	LocationID *int64
	From       *time.Time
	To         *time.Time
}

// InventorySnapshotRepository puerto de persistencia de inventarios (conteos de stock).
type InventorySnapshotRepository interface {
	Create(ctx context.Context, snapshot *entity.InventorySnapshot) error
	List(ctx context.Context, filter SnapshotFilter) ([]*entity.InventorySnapshot, error)
	// LatestAtOrBefore devuelve el inventario más reciente del par con captured_at <= at, o nil si no hay.
	LatestAtOrBefore(ctx context.Context, productID, locationID int64, at time.Time) (*entity.InventorySnapshot, error)
	// LatestPerPair devuelve, por cada par (producto, ubicación), el último inventario con captured_at <= cutoff.
	LatestPerPair(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.InventorySnapshot, error)
}
