// Package tenant asocia el tenant activo al context.Context de cada petición.
//
// El tenant viaja dentro del ctx: toda operación que baja a la base de datos
// recibe el mismo ctx y resuelve su conexión a partir de él. No existe estado
// global mutable, por lo que dos peticiones concurrentes nunca comparten tenant.
package tenant

import (
	"context"
	"fmt"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

// Context identifica el almacén aislado que debe usar una unidad de trabajo.
type Context struct {
	TenantID     int64
	TenantCode   string
	StoreLocator string // URL de conexión PostgreSQL del tenant
	UserID       int64  // 0 si la operación no tiene usuario (jobs)
}

type ctxKey struct{}

// WithTenant devuelve un ctx derivado con tc asociado. El ctx padre no cambia.
func WithTenant(ctx context.Context, tc Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, tc)
}

// FromContext devuelve el tenant activo; ok=false fuera de un scope de tenant.
func FromContext(ctx context.Context) (Context, bool) {
	tc, ok := ctx.Value(ctxKey{}).(Context)
	return tc, ok
}

// Require devuelve el tenant activo o domain.ErrMissingTenantContext.
func Require(ctx context.Context) (Context, error) {
	tc, ok := FromContext(ctx)
	if !ok || tc.StoreLocator == "" {
		return Context{}, domain.ErrMissingTenantContext
	}
	return tc, nil
}

// Run ejecuta fn con tc asociado al ctx. Las llamadas anidadas pueden asociar otro
// tenant para su sub-scope sin afectar al del llamador.
func Run(ctx context.Context, tc Context, fn func(ctx context.Context) error) error {
	if tc.StoreLocator == "" {
		return fmt.Errorf("tenant %q sin store locator: %w", tc.TenantCode, domain.ErrInvalidInput)
	}
	return fn(WithTenant(ctx, tc))
}
