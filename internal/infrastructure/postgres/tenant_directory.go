package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

var _ tenant.Directory = (*TenantDirectory)(nil)

// TenantDirectory directorio de tenants en la base maestra (tabla tenants).
type TenantDirectory struct {
	q Querier
}

// NewTenantDirectory construye el directorio sobre el pool de la base maestra.
func NewTenantDirectory(q Querier) *TenantDirectory {
	return &TenantDirectory{q: q}
}

// Resolve busca un tenant activo por código.
func (d *TenantDirectory) Resolve(ctx context.Context, code string) (tenant.Context, error) {
	query := `SELECT id, code, database_url FROM tenants WHERE code = $1 AND is_active`
	var tc tenant.Context
	err := d.q.QueryRow(ctx, query, code).Scan(&tc.TenantID, &tc.TenantCode, &tc.StoreLocator)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return tenant.Context{}, fmt.Errorf("tenant %q: %w", code, domain.ErrUnknownTenant)
		}
		return tenant.Context{}, fmt.Errorf("resolve tenant: %w", err)
	}
	return tc, nil
}

// List tenants activos ordenados por código.
func (d *TenantDirectory) List(ctx context.Context) ([]tenant.Context, error) {
	rows, err := d.q.Query(ctx, `SELECT id, code, database_url FROM tenants WHERE is_active ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()
	var list []tenant.Context
	for rows.Next() {
		var tc tenant.Context
		if err := rows.Scan(&tc.TenantID, &tc.TenantCode, &tc.StoreLocator); err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		list = append(list, tc)
	}
	return list, rows.Err()
}
