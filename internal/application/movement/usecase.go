// Package movement registra y consulta el diario de movimientos de stock.
package movement

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jhoicas/stock-ledger/internal/application/catalog"
	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/validation"
)

// TxRunner ejecuta fn en una transacción con el diario (movimientos e inventarios) atado a ella.
type TxRunner interface {
	RunJournal(ctx context.Context, fn func(
		movRepo repository.StockMovementRepository,
		snapRepo repository.InventorySnapshotRepository,
	) error) error
}

// ListFilter criterios de GET /api/stock-movements. Day filtra por día UTC completo.
type ListFilter struct {
	ProductID  *int64
	LocationID *int64
	Reasons    []string
	Day        *time.Time
}

// UseCase alta en lote y consultas del diario.
type UseCase struct {
	tx        TxRunner
	movements repository.StockMovementRepository
	products  repository.ProductRepository
	locations repository.StockLocationRepository
	now       func() time.Time
}

// NewUseCase construye el caso de uso.
func NewUseCase(
	tx TxRunner,
	movements repository.StockMovementRepository,
	products repository.ProductRepository,
	locations repository.StockLocationRepository,
) *UseCase {
	return &UseCase{tx: tx, movements: movements, products: products, locations: locations, now: time.Now}
}

// SetClock reemplaza el reloj (pruebas).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// Record valida e inserta todos los movimientos en una sola transacción: o entran todos o ninguno.
func (uc *UseCase) Record(ctx context.Context, req dto.CreateMovementsRequest) ([]dto.MovementDTO, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	productIDs := make([]int64, 0, len(req.Movements))
	locationIDs := make([]int64, 0, len(req.Movements))
	for _, m := range req.Movements {
		productIDs = append(productIDs, m.ProductID)
		locationIDs = append(locationIDs, m.StockLocationID)
	}
	if err := catalog.Ensure(ctx, uc.products, uc.locations, productIDs, locationIDs); err != nil {
		return nil, err
	}

	now := uc.now().UTC()
	movements := make([]*entity.StockMovement, 0, len(req.Movements))
	for _, in := range req.Movements {
		m := &entity.StockMovement{
			ProductID:          in.ProductID,
			LocationID:         in.StockLocationID,
			QuantityDelta:      in.QuantityDelta,
			Reason:             in.Reason,
			OccurredAt:         now,
			SourceDocumentType: in.SourceDocumentType,
			SourceDocumentID:   in.SourceDocumentID,
		}
		if m.Reason == "" {
			m.Reason = entity.ReasonUnknown
		}
		if m.SourceDocumentType == "" {
			m.SourceDocumentType = entity.DocumentOther
		}
		if in.OccurredAt != nil {
			m.OccurredAt = in.OccurredAt.UTC()
		}
		movements = append(movements, m)
	}

	err := uc.tx.RunJournal(ctx, func(movRepo repository.StockMovementRepository, _ repository.InventorySnapshotRepository) error {
		for _, m := range movements {
			if err := movRepo.Create(ctx, m); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("movement: registrar: %w", err)
	}
	return dto.MovementsFromEntities(movements), nil
}

// List movimientos filtrados, del más reciente al más antiguo.
func (uc *UseCase) List(ctx context.Context, f ListFilter) ([]dto.MovementDTO, error) {
	for _, r := range f.Reasons {
		if !entity.IsKnownReason(r) {
			return nil, fmt.Errorf("motivo %q: %w", r, domain.ErrInvalidInput)
		}
	}
	filter := repository.MovementFilter{ProductID: f.ProductID, LocationID: f.LocationID, Reasons: f.Reasons}
	if f.Day != nil {
		from, to := dayBounds(*f.Day)
		filter.From, filter.To = &from, &to
	}
	list, err := uc.movements.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("movement: listar: %w", err)
	}
	return dto.MovementsFromEntities(list), nil
}

// DisposalSummary salidas sin venta (donación, destrucción, uso propio) por producto y motivo,
// valorizadas al precio de compra. from/to nil = sin límite.
func (uc *UseCase) DisposalSummary(ctx context.Context, from, to *time.Time) (*dto.DisposalSummaryDTO, error) {
	if from != nil && to != nil && to.Before(*from) {
		return nil, fmt.Errorf("rango de fechas invertido: %w", domain.ErrInvalidInput)
	}
	list, err := uc.movements.List(ctx, repository.MovementFilter{Reasons: entity.DisposalReasons, From: from, To: to})
	if err != nil {
		return nil, fmt.Errorf("movement: bajas: %w", err)
	}

	byProduct := map[int64]*dto.DisposalLineDTO{}
	ids := make([]int64, 0)
	for _, m := range list {
		line, ok := byProduct[m.ProductID]
		if !ok {
			line = &dto.DisposalLineDTO{
				ProductID:    m.ProductID,
				Quantities:   map[string]int64{},
				AmountsCents: map[string]int64{},
			}
			byProduct[m.ProductID] = line
			ids = append(ids, m.ProductID)
		}
		// Unidades salidas, sin importar el signo con que se registró la baja.
		qty := m.QuantityDelta
		if qty < 0 {
			qty = -qty
		}
		line.Quantities[m.Reason] += qty
	}

	products, err := uc.products.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("movement: productos: %w", err)
	}

	summary := &dto.DisposalSummaryDTO{From: from, To: to, TotalsCents: map[string]int64{}}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		line := byProduct[id]
		var price int64
		if p, ok := products[id]; ok {
			line.SKU, line.ProductName = p.SKU, p.Name
			price = inventory.ToCents(p.PurchasePrice)
		}
		for reason, qty := range line.Quantities {
			amount := qty * price
			line.AmountsCents[reason] = amount
			line.TotalQuantity += qty
			line.TotalCents += amount
			summary.TotalsCents[reason] += amount
		}
		summary.TotalQuantity += line.TotalQuantity
		summary.TotalCents += line.TotalCents
		summary.Lines = append(summary.Lines, *line)
	}
	if summary.Lines == nil {
		summary.Lines = []dto.DisposalLineDTO{}
	}
	return summary, nil
}

func dayBounds(day time.Time) (time.Time, time.Time) {
	y, m, d := day.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 0, 1).Add(-time.Microsecond)
}
