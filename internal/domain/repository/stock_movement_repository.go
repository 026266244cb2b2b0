package repository

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
)

// MovementFilter criterios de listado de movimientos; los campos vacíos no filtran.
type MovementFilter struct {
	ProductID  *int64
	LocationID *int64
	Reasons    []string
	From       *time.Time // inclusivo
	To         *time.Time // inclusivo
}

// StockMovementRepository puerto de persistencia del diario de movimientos (append-only).
type StockMovementRepository interface {
	Create(ctx context.Context, movement *entity.StockMovement) error
	// List devuelve los movimientos que cumplen el filtro, del más reciente al más antiguo.
	List(ctx context.Context, filter MovementFilter) ([]*entity.StockMovement, error)
	// SumDeltas suma quantity_delta del par con occurred_at en (after, upTo]; after nil = sin límite inferior.
	SumDeltas(ctx context.Context, productID, locationID int64, after *time.Time, upTo time.Time) (int64, error)
	// ListUpTo devuelve los movimientos con occurred_at <= cutoff (opcionalmente de un solo producto).
	ListUpTo(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.StockMovement, error)
}
