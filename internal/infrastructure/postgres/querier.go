package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// Querier es el subconjunto común de *pgxpool.Pool y pgx.Tx que usan los repositorios.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Connector resuelve el Querier a usar para una operación a partir del ctx.
type Connector interface {
	Querier(ctx context.Context) (Querier, error)
}

// TenantConnector enruta cada operación al pool del tenant asociado al ctx.
type TenantConnector struct {
	registry *Registry
}

// NewTenantConnector construye el conector sobre el registro de pools.
func NewTenantConnector(registry *Registry) *TenantConnector {
	return &TenantConnector{registry: registry}
}

// Querier devuelve el pool del tenant activo; domain.ErrMissingTenantContext si no hay.
func (c *TenantConnector) Querier(ctx context.Context) (Querier, error) {
	tc, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := c.registry.HandleFor(ctx, tc.StoreLocator)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// staticConnector siempre devuelve el mismo Querier (tx en curso o pool fijo).
type staticConnector struct {
	q Querier
}

func (c staticConnector) Querier(context.Context) (Querier, error) {
	return c.q, nil
}

// Static envuelve un pool o tx como Connector.
func Static(q Querier) Connector {
	return staticConnector{q: q}
}
