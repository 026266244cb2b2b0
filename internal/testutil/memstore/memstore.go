// Package memstore implementa en memoria los puertos de persistencia del motor de
// stock para las pruebas de casos de uso, jobs y handlers. Todas las operaciones
// exigen un tenant en el ctx, igual que los repositorios PostgreSQL.
package memstore

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/inventory"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

var (
	_ repository.StockMovementRepository     = (*movementRepo)(nil)
	_ repository.InventorySnapshotRepository = (*snapshotRepo)(nil)
	_ repository.DailyValuationRepository    = (*valuationRepo)(nil)
	_ repository.StockLocationRepository     = (*locationRepo)(nil)
	_ repository.ProductRepository           = (*productRepo)(nil)
)

// ErrInjected error devuelto por las fallas configuradas con FailUpsertOn / FailJournal.
var ErrInjected = errors.New("memstore: falla inyectada")

// Store base en memoria de un tenant.
type Store struct {
	mu         sync.Mutex
	movements  []entity.StockMovement
	snapshots  []entity.InventorySnapshot
	valuations map[valuationKey]entity.DailyValuation
	locations  map[int64]entity.StockLocation
	products   map[int64]entity.Product
	nextID     int64

	failUpsertDay map[string]bool
	failJournal   bool

	// Contadores para verificar cuánto trabajo hizo el caso de uso.
	ListUpToCalls     int
	LatestPerPairCall int
	UpsertedRows      int
	ListRangeCalls    int
}

type valuationKey struct {
	date  string
	scope string
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		valuations:    map[valuationKey]entity.DailyValuation{},
		locations:     map[int64]entity.StockLocation{},
		products:      map[int64]entity.Product{},
		failUpsertDay: map[string]bool{},
	}
}

// Movements diario de movimientos sobre el store.
func (s *Store) Movements() repository.StockMovementRepository { return &movementRepo{s} }

// Locations catálogo de ubicaciones sobre el store.
func (s *Store) Locations() repository.StockLocationRepository { return &locationRepo{s} }

// Snapshots repositorio de inventarios sobre el store.
func (s *Store) Snapshots() repository.InventorySnapshotRepository { return &snapshotRepo{s} }

// Valuations repositorio de la caché de valorizaciones sobre el store.
func (s *Store) Valuations() repository.DailyValuationRepository { return &valuationRepo{s} }

// Products catálogo de productos sobre el store.
func (s *Store) Products() repository.ProductRepository { return &productRepo{s} }

// ── Datos de prueba ──────────────────────────────────────────────────────────

// AddLocation registra una ubicación.
func (s *Store) AddLocation(id int64, code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locations[id] = entity.StockLocation{ID: id, Code: code, Name: code}
}

// AddProduct registra un producto con su precio de compra.
func (s *Store) AddProduct(p entity.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// AddSnapshot inserta un inventario sin pasar por un ctx de tenant.
func (s *Store) AddSnapshot(productID, locationID, qty int64, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.snapshots = append(s.snapshots, entity.InventorySnapshot{
		ID: s.nextID, ProductID: productID, LocationID: locationID, Quantity: qty, CapturedAt: at,
	})
}

// AddMovement inserta un movimiento sin pasar por un ctx de tenant.
func (s *Store) AddMovement(productID, locationID, delta int64, reason string, at time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.movements = append(s.movements, entity.StockMovement{
		ID: s.nextID, ProductID: productID, LocationID: locationID, QuantityDelta: delta,
		Reason: reason, OccurredAt: at, SourceDocumentType: entity.DocumentOther,
	})
}

// FailUpsertOn hace fallar la persistencia de la valorización de ese día (UTC).
func (s *Store) FailUpsertOn(day time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failUpsertDay[day.UTC().Format(time.DateOnly)] = true
}

// FailJournal hace fallar la próxima transacción de diario antes del commit.
func (s *Store) FailJournal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failJournal = true
}

// CachedRows copia de las filas de la caché ordenadas por día y scope.
func (s *Store) CachedRows() []entity.DailyValuation {
	s.mu.Lock()
	defer s.mu.Unlock()
	rows := make([]entity.DailyValuation, 0, len(s.valuations))
	for _, v := range s.valuations {
		rows = append(rows, v)
	}
	sort.Slice(rows, func(i, j int) bool {
		if !rows[i].ValuationDate.Equal(rows[j].ValuationDate) {
			return rows[i].ValuationDate.Before(rows[j].ValuationDate)
		}
		return rows[i].ScopeKey < rows[j].ScopeKey
	})
	return rows
}

// MovementCount número de movimientos persistidos.
func (s *Store) MovementCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.movements)
}

// SnapshotCount número de inventarios persistidos.
func (s *Store) SnapshotCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snapshots)
}

// ResetCounters pone a cero los contadores.
func (s *Store) ResetCounters() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ListUpToCalls, s.LatestPerPairCall, s.UpsertedRows, s.ListRangeCalls = 0, 0, 0, 0
}

// ── StockMovementRepository ─────────────────────────────────────────────────

type movementRepo struct{ s *Store }

func (r *movementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	if _, err := tenant.Require(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	m.ID = r.s.nextID
	r.s.movements = append(r.s.movements, *m)
	return nil
}

func (r *movementRepo) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.StockMovement
	for _, m := range r.s.movements {
		if f.ProductID != nil && m.ProductID != *f.ProductID {
			continue
		}
		if f.LocationID != nil && m.LocationID != *f.LocationID {
			continue
		}
		if len(f.Reasons) > 0 && !contains(f.Reasons, m.Reason) {
			continue
		}
		if f.From != nil && m.OccurredAt.Before(*f.From) {
			continue
		}
		if f.To != nil && m.OccurredAt.After(*f.To) {
			continue
		}
		m := m
		out = append(out, &m)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].OccurredAt.Equal(out[j].OccurredAt) {
			return out[i].OccurredAt.After(out[j].OccurredAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *movementRepo) SumDeltas(ctx context.Context, productID, locationID int64, after *time.Time, upTo time.Time) (int64, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var sum int64
	for _, m := range r.s.movements {
		if m.ProductID != productID || m.LocationID != locationID || m.OccurredAt.After(upTo) {
			continue
		}
		if after != nil && !m.OccurredAt.After(*after) {
			continue
		}
		sum += m.QuantityDelta
	}
	return sum, nil
}

func (r *movementRepo) ListUpTo(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.StockMovement, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ListUpToCalls++
	var out []entity.StockMovement
	for _, m := range r.s.movements {
		if m.OccurredAt.After(cutoff) || (productID != nil && m.ProductID != *productID) {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// ── StockLocationRepository ─────────────────────────────────────────────────

type locationRepo struct{ s *Store }

func (r *locationRepo) ListIDs(ctx context.Context) ([]int64, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ids := make([]int64, 0, len(r.s.locations))
	for id := range r.s.locations {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (r *locationRepo) GetByID(ctx context.Context, id int64) (*entity.StockLocation, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.locations[id]
	if !ok {
		return nil, nil
	}
	return &l, nil
}

// ── InventorySnapshotRepository ─────────────────────────────────────────────

type snapshotRepo struct{ s *Store }

func (r *snapshotRepo) Create(ctx context.Context, snap *entity.InventorySnapshot) error {
	if _, err := tenant.Require(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.nextID++
	snap.ID = r.s.nextID
	r.s.snapshots = append(r.s.snapshots, *snap)
	return nil
}

func (r *snapshotRepo) List(ctx context.Context, f repository.SnapshotFilter) ([]*entity.InventorySnapshot, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entity.InventorySnapshot
	for _, sn := range r.s.snapshots {
		if f.ProductID != nil && sn.ProductID != *f.ProductID {
			continue
		}
		if f.LocationID != nil && sn.LocationID != *f.LocationID {
			continue
		}
		if f.From != nil && sn.CapturedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && sn.CapturedAt.After(*f.To) {
			continue
		}
		sn := sn
		out = append(out, &sn)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CapturedAt.Equal(out[j].CapturedAt) {
			return out[i].CapturedAt.After(out[j].CapturedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (r *snapshotRepo) LatestAtOrBefore(ctx context.Context, productID, locationID int64, at time.Time) (*entity.InventorySnapshot, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var best *entity.InventorySnapshot
	for i := range r.s.snapshots {
		sn := r.s.snapshots[i]
		if sn.ProductID != productID || sn.LocationID != locationID || sn.CapturedAt.After(at) {
			continue
		}
		if best == nil || sn.CapturedAt.After(best.CapturedAt) || (sn.CapturedAt.Equal(best.CapturedAt) && sn.ID > best.ID) {
			best = &sn
		}
	}
	return best, nil
}

func (r *snapshotRepo) LatestPerPair(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.InventorySnapshot, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.LatestPerPairCall++
	type pk struct{ p, l int64 }
	latest := map[pk]entity.InventorySnapshot{}
	for _, sn := range r.s.snapshots {
		if sn.CapturedAt.After(cutoff) || (productID != nil && sn.ProductID != *productID) {
			continue
		}
		k := pk{sn.ProductID, sn.LocationID}
		cur, ok := latest[k]
		if !ok || sn.CapturedAt.After(cur.CapturedAt) || (sn.CapturedAt.Equal(cur.CapturedAt) && sn.ID > cur.ID) {
			latest[k] = sn
		}
	}
	out := make([]entity.InventorySnapshot, 0, len(latest))
	for _, sn := range latest {
		out = append(out, sn)
	}
	return out, nil
}

// ── DailyValuationRepository ────────────────────────────────────────────────

type valuationRepo struct{ s *Store }

func (r *valuationRepo) ListRange(ctx context.Context, from, toExclusive time.Time, scopeKeys []string) ([]entity.DailyValuation, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.ListRangeCalls++
	var out []entity.DailyValuation
	for _, v := range r.s.valuations {
		if v.ValuationDate.Before(from) || !v.ValuationDate.Before(toExclusive) || !contains(scopeKeys, v.ScopeKey) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (r *valuationRepo) Upsert(ctx context.Context, rows []entity.DailyValuation) error {
	if _, err := tenant.Require(ctx); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, v := range rows {
		if r.s.failUpsertDay[v.ValuationDate.UTC().Format(time.DateOnly)] {
			return ErrInjected
		}
	}
	for _, v := range rows {
		r.s.valuations[valuationKey{v.ValuationDate.UTC().Format(time.DateOnly), v.ScopeKey}] = v
		r.s.UpsertedRows++
	}
	return nil
}

func (r *valuationRepo) Truncate(ctx context.Context) (int64, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return 0, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	n := int64(len(r.s.valuations))
	r.s.valuations = map[valuationKey]entity.DailyValuation{}
	return n, nil
}

// ── ProductRepository ───────────────────────────────────────────────────────

type productRepo struct{ s *Store }

func (r *productRepo) GetByID(ctx context.Context, id int64) (*entity.Product, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (r *productRepo) GetByIDs(ctx context.Context, ids []int64) (map[int64]*entity.Product, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int64]*entity.Product{}
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			p := p
			out[id] = &p
		}
	}
	return out, nil
}

func (r *productRepo) PurchasePricesCents(ctx context.Context) (map[int64]int64, error) {
	if _, err := tenant.Require(ctx); err != nil {
		return nil, err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := map[int64]int64{}
	for id, p := range r.s.products {
		out[id] = inventory.ToCents(p.PurchasePrice)
	}
	return out, nil
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
