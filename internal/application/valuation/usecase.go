// Package valuation calcula el valor total del stock al cierre de cada día y lo
// guarda en una caché durable por (día, scope). Solo se recalculan los días y
// scopes que faltan en la caché.
package valuation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

// Config parámetros de la valorización.
type Config struct {
	MaxDays      int
	Currency     string
	RefreshToday bool // true = el día en curso se recalcula y se vuelve a guardar en cada consulta
	Timeout      time.Duration
}

// UseCase valorización diaria con caché incremental.
type UseCase struct {
	cache     repository.DailyValuationRepository
	tx        TxRunner
	movements repository.StockMovementRepository
	snapshots repository.InventorySnapshotRepository
	products  repository.ProductRepository
	locations repository.StockLocationRepository
	generator ReportGenerator
	cfg       Config
	log       zerolog.Logger
	now       func() time.Time
}

// NewUseCase construye el caso de uso. generator puede ser nil si no se exponen informes.
func NewUseCase(
	cache repository.DailyValuationRepository,
	tx TxRunner,
	movements repository.StockMovementRepository,
	snapshots repository.InventorySnapshotRepository,
	products repository.ProductRepository,
	locations repository.StockLocationRepository,
	generator ReportGenerator,
	cfg Config,
	log zerolog.Logger,
) *UseCase {
	if cfg.MaxDays <= 0 {
		cfg.MaxDays = 90
	}
	if cfg.Currency == "" {
		cfg.Currency = "EUR"
	}
	return &UseCase{
		cache:     cache,
		tx:        tx,
		movements: movements,
		snapshots: snapshots,
		products:  products,
		locations: locations,
		generator: generator,
		cfg:       cfg,
		log:       log.With().Str("component", "valuation").Logger(),
		now:       time.Now,
	}
}

// SetClock reemplaza el reloj (pruebas).
func (uc *UseCase) SetClock(now func() time.Time) { uc.now = now }

// dayRows filas de un día indexadas por scope.
type dayRows map[string]entity.DailyValuation

// GetDaily valorización de los últimos days días (hoy incluido), para todas las
// ubicaciones (locationID nil) o para una. La caché se completa siempre para
// todos los scopes, así las filas sirven a cualquier consulta posterior.
func (uc *UseCase) GetDaily(ctx context.Context, days int, locationID *int64) (*dto.ValuationSeriesDTO, error) {
	if days <= 0 {
		return nil, fmt.Errorf("days debe ser positivo: %w", domain.ErrInvalidInput)
	}
	if locationID != nil && *locationID <= 0 {
		return nil, fmt.Errorf("stockLocationId inválido: %w", domain.ErrInvalidInput)
	}
	if uc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, uc.cfg.Timeout)
		defer cancel()
	}
	log := logger.FromContext(ctx, uc.log)

	truncated := false
	if days > uc.cfg.MaxDays {
		log.Warn().Int("requested", days).Int("max", uc.cfg.MaxDays).Msg("days truncado al máximo")
		days = uc.cfg.MaxDays
		truncated = true
	}

	now := uc.now().UTC()
	today := startOfDay(now)
	first := today.AddDate(0, 0, -(days - 1))

	locIDs, err := uc.locations.ListIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("valuation: ubicaciones: %w", err)
	}
	if locationID != nil && !containsID(locIDs, *locationID) {
		return nil, fmt.Errorf("ubicación %d: %w", *locationID, domain.ErrNotFound)
	}
	scopes := scopeKeys(locIDs)

	cachedList, err := uc.cache.ListRange(ctx, first, today.AddDate(0, 0, 1), scopes)
	if err != nil {
		return nil, fmt.Errorf("valuation: leer caché: %w", err)
	}
	byDay := make(map[string]dayRows, days)
	fromCache := make(map[string]bool, len(cachedList))
	for _, row := range cachedList {
		key := dayKey(row.ValuationDate)
		if byDay[key] == nil {
			byDay[key] = dayRows{}
		}
		byDay[key][row.ScopeKey] = row
		fromCache[key+"|"+row.ScopeKey] = true
	}

	var prices map[int64]int64
	computed := 0
	for day := first; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := dayKey(day)
		isToday := day.Equal(today)
		missing := missingScopes(byDay[key], scopes, day, isToday, uc.cfg.RefreshToday)
		if len(missing) == 0 {
			continue
		}
		if prices == nil {
			if prices, err = uc.products.PurchasePricesCents(ctx); err != nil {
				return nil, fmt.Errorf("valuation: precios: %w", err)
			}
		}

		cutoff := endOfDay(day)
		if isToday {
			cutoff = now
		}
		rows, err := uc.computeDay(ctx, day, cutoff, missing, prices)
		if err != nil {
			return nil, err
		}
		if err := uc.tx.RunValuation(ctx, func(valRepo repository.DailyValuationRepository) error {
			return valRepo.Upsert(ctx, rows)
		}); err != nil {
			return nil, fmt.Errorf("valuation: persistir %s: %w", key, err)
		}

		if byDay[key] == nil {
			byDay[key] = dayRows{}
		}
		for _, row := range rows {
			byDay[key][row.ScopeKey] = row
			delete(fromCache, key+"|"+row.ScopeKey)
		}
		computed++
	}
	if computed > 0 {
		log.Debug().Int("days", days).Int("computed", computed).Msg("valorizaciones calculadas")
	}

	requested := entity.AllScopeKey
	if locationID != nil {
		requested = entity.LocationScopeKey(*locationID)
	}
	series := &dto.ValuationSeriesDTO{
		Days:       days,
		Truncated:  truncated,
		ComputedAt: now,
		Points:     make([]dto.ValuationPointDTO, 0, days),
	}
	for day := first; !day.After(today); day = day.AddDate(0, 0, 1) {
		key := dayKey(day)
		row := byDay[key][requested]
		series.Points = append(series.Points, uc.toPoint(day, row, locationID, fromCache[key+"|"+requested]))
	}
	return series, nil
}

// computeDay reconstruye todos los pares al corte en una sola pasada y arma las filas faltantes.
func (uc *UseCase) computeDay(ctx context.Context, day, cutoff time.Time, missing []string, prices map[int64]int64) ([]entity.DailyValuation, error) {
	snaps, err := uc.snapshots.LatestPerPair(ctx, cutoff, nil)
	if err != nil {
		return nil, fmt.Errorf("valuation: inventarios %s: %w", dayKey(day), err)
	}
	movs, err := uc.movements.ListUpTo(ctx, cutoff, nil)
	if err != nil {
		return nil, fmt.Errorf("valuation: movimientos %s: %w", dayKey(day), err)
	}
	value := inventory.Value(inventory.Fold(snaps, movs, cutoff), prices)

	computedAt := uc.now().UTC()
	rows := make([]entity.DailyValuation, 0, len(missing))
	for _, scope := range missing {
		row := entity.DailyValuation{
			ValuationDate: day,
			ScopeKey:      scope,
			Currency:      uc.cfg.Currency,
			ComputedAt:    computedAt,
		}
		if scope == entity.AllScopeKey {
			row.TotalValueCents = value.TotalCents
		} else {
			id := locationFromScope(scope)
			row.LocationID = &id
			row.TotalValueCents = value.PerLocation[id]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (uc *UseCase) toPoint(day time.Time, row entity.DailyValuation, locationID *int64, cached bool) dto.ValuationPointDTO {
	currency := row.Currency
	if currency == "" {
		currency = uc.cfg.Currency
	}
	p := dto.ValuationPointDTO{
		ValuationDate:   dayKey(day),
		TotalValueCents: row.TotalValueCents,
		TotalValue:      inventory.FromCents(row.TotalValueCents),
		Currency:        currency,
		Scope:           dto.ScopeAll,
		FromCache:       cached,
	}
	if locationID != nil {
		p.Scope = dto.ScopeLocation
		id := *locationID
		p.StockLocationID = &id
	}
	return p
}

// PurgeCache vacía la caché de valorizaciones del tenant. Se regenera en la próxima consulta.
func (uc *UseCase) PurgeCache(ctx context.Context) (int64, error) {
	var deleted int64
	err := uc.tx.RunValuation(ctx, func(valRepo repository.DailyValuationRepository) error {
		n, err := valRepo.Truncate(ctx)
		deleted = n
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("valuation: vaciar caché: %w", err)
	}
	logger.FromContext(ctx, uc.log).Info().Int64("deleted", deleted).Msg("caché de valorizaciones vaciada")
	return deleted, nil
}
