package tenant

import "context"

// Directory resuelve el código de tenant de un token a su almacén aislado.
type Directory interface {
	// Resolve devuelve el tenant activo con ese código o domain.ErrUnknownTenant.
	Resolve(ctx context.Context, code string) (Context, error)
	// List devuelve todos los tenants activos.
	List(ctx context.Context) ([]Context, error)
}
