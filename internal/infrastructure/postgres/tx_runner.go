package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/application/movement"
	"github.com/jhoicas/stock-ledger/internal/application/snapshot"
	"github.com/jhoicas/stock-ledger/internal/application/valuation"
	"github.com/jhoicas/stock-ledger/internal/domain/repository"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// Ensure TxRunner implements los puertos transaccionales de los casos de uso.
var _ valuation.TxRunner = (*TxRunner)(nil)
var _ movement.TxRunner = (*TxRunner)(nil)
var _ snapshot.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción en la base del tenant activo.
type TxRunner struct {
	registry *Registry
}

// NewTxRunner construye el runner con el registro de pools.
func NewTxRunner(registry *Registry) *TxRunner {
	return &TxRunner{registry: registry}
}

// RunValuation transacción con la caché de valorizaciones (un día por llamada).
func (r *TxRunner) RunValuation(ctx context.Context, fn func(valRepo repository.DailyValuationRepository) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		return fn(NewDailyValuationRepository(Static(tx)))
	})
}

// RunJournal transacción con movimientos e inventarios (alta en lote).
func (r *TxRunner) RunJournal(ctx context.Context, fn func(
	movRepo repository.StockMovementRepository,
	snapRepo repository.InventorySnapshotRepository,
) error) error {
	return r.run(ctx, func(tx pgx.Tx) error {
		conn := Static(tx)
		return fn(NewStockMovementRepository(conn), NewInventorySnapshotRepository(conn))
	})
}

// run inicia la transacción, ejecuta fn y hace Commit; cualquier salida anticipada
// (error, panic o ctx cancelado) termina en Rollback.
func (r *TxRunner) run(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	pool, err := r.registry.HandleFor(ctx, tc.StoreLocator)
	if err != nil {
		return err
	}
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
