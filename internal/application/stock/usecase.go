// Package stock reconstruye la cantidad en stock de un producto en un instante
// a partir del último inventario y los movimientos posteriores.
package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
)

// UseCase consultas de stock puntual e historial de movimientos.
type UseCase struct {
	movements repository.StockMovementRepository
	snapshots repository.InventorySnapshotRepository
	products  repository.ProductRepository
	locations repository.StockLocationRepository
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	movements repository.StockMovementRepository,
	snapshots repository.InventorySnapshotRepository,
	products repository.ProductRepository,
	locations repository.StockLocationRepository,
) *UseCase {
	return &UseCase{
		movements: movements,
		snapshots: snapshots,
		products:  products,
		locations: locations,
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (pruebas).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// StockAt cantidad del producto en el instante at.
// Con locationID nil reconstruye cada ubicación por separado y suma.
// El inventario base y la suma de movimientos usan el mismo corte.
func (uc *UseCase) StockAt(ctx context.Context, productID int64, locationID *int64, at time.Time) (int64, error) {
	if at.IsZero() || productID <= 0 || (locationID != nil && *locationID <= 0) {
		return 0, domain.ErrInvalidInput
	}
	if err := uc.ensureProduct(ctx, productID); err != nil {
		return 0, err
	}

	if locationID == nil {
		snaps, err := uc.snapshots.LatestPerPair(ctx, at, &productID)
		if err != nil {
			return 0, fmt.Errorf("stock: inventarios: %w", err)
		}
		movs, err := uc.movements.ListUpTo(ctx, at, &productID)
		if err != nil {
			return 0, fmt.Errorf("stock: movimientos: %w", err)
		}
		return inventory.Total(inventory.Fold(snaps, movs, at)), nil
	}

	loc, err := uc.locations.GetByID(ctx, *locationID)
	if err != nil {
		return 0, fmt.Errorf("stock: ubicación: %w", err)
	}
	if loc == nil {
		return 0, fmt.Errorf("ubicación %d: %w", *locationID, domain.ErrNotFound)
	}

	snap, err := uc.snapshots.LatestAtOrBefore(ctx, productID, *locationID, at)
	if err != nil {
		return 0, fmt.Errorf("stock: inventario: %w", err)
	}
	var base int64
	var after *time.Time
	if snap != nil {
		base = snap.Quantity
		after = &snap.CapturedAt
	}
	sum, err := uc.movements.SumDeltas(ctx, productID, *locationID, after, at)
	if err != nil {
		return 0, fmt.Errorf("stock: suma de movimientos: %w", err)
	}
	return base + sum, nil
}

// CurrentStock stock al instante actual.
func (uc *UseCase) CurrentStock(ctx context.Context, productID int64, locationID *int64) (int64, error) {
	return uc.StockAt(ctx, productID, locationID, uc.now().UTC())
}

// MovementsFor historial completo del producto, del más reciente al más antiguo.
func (uc *UseCase) MovementsFor(ctx context.Context, productID int64) ([]dto.MovementDTO, error) {
	if productID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	if err := uc.ensureProduct(ctx, productID); err != nil {
		return nil, err
	}
	list, err := uc.movements.List(ctx, repository.MovementFilter{ProductID: &productID})
	if err != nil {
		return nil, fmt.Errorf("stock: historial: %w", err)
	}
	return dto.MovementsFromEntities(list), nil
}

func (uc *UseCase) ensureProduct(ctx context.Context, productID int64) error {
	p, err := uc.products.GetByID(ctx, productID)
	if err != nil {
		return fmt.Errorf("stock: producto: %w", err)
	}
	if p == nil {
		return fmt.Errorf("producto %d: %w", productID, domain.ErrNotFound)
	}
	return nil
}
