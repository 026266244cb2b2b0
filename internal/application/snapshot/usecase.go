// Package snapshot registra inventarios (conteos físicos o importaciones correctivas).
package snapshot

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/catalog"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/validation"
)

// TxRunner ejecuta fn en una transacción con el diario atado a ella.
type TxRunner interface {
	RunJournal(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		snapRepo repository.InventorySnapshotRepository,
	) error) error
}

// ListFilter criterios de GET /api/inventories.
type ListFilter struct {
	ProductID  *int64
	LocationID *int64
	Day        *time.Time
}

// UseCase alta y consulta de inventarios.
type UseCase struct {
	tx        TxRunner
	snapshots repository.InventorySnapshotRepository
	products  repository.ProductRepository
	locations repository.StockLocationRepository
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx TxRunner,
	snapshots repository.InventorySnapshotRepository,
	products repository.ProductRepository,
	locations repository.StockLocationRepository,
) *UseCase {
	return &UseCase{tx: tx, snapshots: snapshots, products: products, locations: locations, now: time.Now}
}

// SetClock reemplaza el reloj (pruebas).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// Record inserta los inventarios en una transacción. Un inventario no borra
// movimientos: pasa a ser la base para los cálculos posteriores a su fecha.
func (uc *UseCase) Record(ctx context.Context, req dto.CreateSnapshotsRequest) ([]dto.SnapshotDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	productIDs := make([]int64, 0, len(req.Inventories))
	locationIDs := make([]int64, 0, len(req.Inventories))
	for _, in := range req.Inventories {
		productIDs = append(productIDs, in.ProductID)
		locationIDs = append(locationIDs, in.StockLocationID)
	}
	if err := catalog.Ensure(ctx, uc.products, uc.locations, productIDs, locationIDs); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	snaps := make([]*entity.InventorySnapshot, 0, len(req.Inventories))
	for _, in := range req.Inventories {
		s := &entity.InventorySnapshot{
			ProductID:  in.ProductID,
			LocationID: in.StockLocationID,
			Quantity:   in.Quantity,
			CapturedAt: now,
		}
		if in.CapturedAt != nil {
			s.CapturedAt = in.CapturedAt.UTC()
		}
		snaps = append(snaps, s)
	}

	err := uc.tx.RunJournal(ctx, func(_ repository.StockMovementRepository, snapRepo repository.InventorySnapshotRepository) error {
		for _, s := range snaps {
			if err := snapRepo.Create(ctx, s); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: registrar: %w", err)
	}

	out := make([]dto.SnapshotDTO, 0, len(snaps))
	for _, s := range snaps {
		out = append(out, dto.SnapshotFromEntity(s))
	}
	return out, nil
}

// List inventarios filtrados, del más reciente al más antiguo.
func (uc *UseCase) List(ctx context.Context, f ListFilter) ([]dto.SnapshotDTO, error) {
	filter := repository.SnapshotFilter{ProductID: f.ProductID, LocationID: f.LocationID}
	if f.Day != nil {
		y, m, d := f.Day.UTC().Date()
		from := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(0, 0, 1).Add(-time.Microsecond)
		filter.From, filter.To = &from, &to
	}
	list, err := uc.snapshots.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("snapshot: listar: %w", err)
	}
	out := make([]dto.SnapshotDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.SnapshotFromEntity(s))
	}
	return out, nil
}
