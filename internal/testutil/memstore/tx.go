package memstore

import (
	"context"
	"time"

	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// TxRunner simula las transacciones: los cambios se aplican al store solo si fn termina sin error.
type TxRunner struct {
	s *Store
}

// NewTxRunner construye el runner sobre el store.
func NewTxRunner(s *Store) *TxRunner {
	return &TxRunner{s: s}
}

// RunValuation acumula los upserts y los aplica al final.
func (r *TxRunner) RunValuation(ctx context.Context, fn func(valRepo repository.DailyValuationRepository) error) error {
	if _, err := tenant.Require(ctx); err != nil {
		return err
	}
	tx := &valuationTx{s: r.s}
	if err := fn(tx); err != nil {
		return err
	}
	return r.s.Valuations().Upsert(ctx, tx.pending)
}

// RunJournal acumula movimientos e inventarios y los aplica al final.
func (r *TxRunner) RunJournal(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	snapRepo repository.InventorySnapshotRepository,
) error) error {
	if _, err := tenant.Require(ctx); err != nil {
		return err
	}
	tx := &journalTx{s: r.s}
	if err := fn(&journalMovements{tx}, &journalSnapshots{tx}); err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failJournal {
		r.s.failJournal = false
		return ErrInjected
	}
	for _, m := range tx.movements {
		r.s.nextID++
		m.ID = r.s.nextID
		r.s.movements = append(r.s.movements, *m)
	}
	for _, sn := range tx.snapshots {
		r.s.nextID++
		sn.ID = r.s.nextID
		r.s.snapshots = append(r.s.snapshots, *sn)
	}
	return nil
}

type valuationTx struct {
	s       *Store
	pending []entity.DailyValuation
}

func (t *valuationTx) ListRange(ctx context.Context, from, toExclusive time.Time, scopeKeys []string) ([]entity.DailyValuation, error) {
	return t.s.Valuations().ListRange(ctx, from, toExclusive, scopeKeys)
}

func (t *valuationTx) Upsert(_ context.Context, rows []entity.DailyValuation) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for _, v := range rows {
		if t.s.failUpsertDay[v.ValuationDate.UTC().Format(time.DateOnly)] {
			return ErrInjected
		}
	}
	t.pending = append(t.pending, rows...)
	return nil
}

func (t *valuationTx) Truncate(ctx context.Context) (int64, error) {
	return t.s.Valuations().Truncate(ctx)
}

type journalTx struct {
	s         *Store
	movements []*entity.StockMovement
	snapshots []*entity.InventorySnapshot
}

// journalMovements solo admite altas; las lecturas ven el store confirmado.
type journalMovements struct{ tx *journalTx }

func (j *journalMovements) Create(_ context.Context, m *entity.StockMovement) error {
	j.tx.movements = append(j.tx.movements, m)
	return nil
}

func (j *journalMovements) List(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	return j.tx.s.Movements().List(ctx, f)
}

func (j *journalMovements) SumDeltas(ctx context.Context, productID, locationID int64, after *time.Time, upTo time.Time) (int64, error) {
	return j.tx.s.Movements().SumDeltas(ctx, productID, locationID, after, upTo)
}

func (j *journalMovements) ListUpTo(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.StockMovement, error) {
	return j.tx.s.Movements().ListUpTo(ctx, cutoff, productID)
}

type journalSnapshots struct{ tx *journalTx }

func (j *journalSnapshots) Create(_ context.Context, sn *entity.InventorySnapshot) error {
	j.tx.snapshots = append(j.tx.snapshots, sn)
	return nil
}

func (j *journalSnapshots) List(ctx context.Context, f repository.SnapshotFilter) ([]*entity.InventorySnapshot, error) {
	return j.tx.s.Snapshots().List(ctx, f)
}

func (j *journalSnapshots) LatestAtOrBefore(ctx context.Context, productID, locationID int64, at time.Time) (*entity.InventorySnapshot, error) {
	return j.tx.s.Snapshots().LatestAtOrBefore(ctx, productID, locationID, at)
}

func (j *journalSnapshots) LatestPerPair(ctx context.Context, cutoff time.Time, productID *int64) ([]entity.InventorySnapshot, error) {
	return j.tx.s.Snapshots().LatestPerPair(ctx, cutoff, productID)
}
