package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrUnauthorized = errors.New("no autorizado")

	// ErrMissingTenantContext indica que se intentó leer/escribir datos sin un tenant
	// asociado al contexto. Es un error de enrutamiento: no se reintenta.
	ErrMissingTenantContext = errors.New("no hay tenant activo en el contexto")
	// ErrUnknownTenant el código de tenant del token no existe o está inactivo.
	ErrUnknownTenant = errors.New("tenant desconocido o inactivo")
)
