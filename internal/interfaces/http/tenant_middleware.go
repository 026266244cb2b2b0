package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// HeaderRequestID cabecera de correlación de la petición.
const HeaderRequestID = "X-Request-ID"

// TenantScope resuelve el tenant del token y lo asocia al ctx de la petición
// (c.UserContext). Debe ir DESPUÉS de AuthMiddleware.
//
// Sin identidad la petición sigue sin tenant: las operaciones que bajan a la base
// fallan con ErrMissingTenantContext.
func TenantScope(directory tenant.Directory, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)

		reqLog := log.With().Str("request_id", requestID).Logger()
		id, ok := GetIdentity(c)
		if !ok || id.TenantCode == "" {
			c.SetUserContext(reqLog.WithContext(c.UserContext()))
			return c.Next()
		}

		tc, err := directory.Resolve(c.UserContext(), id.TenantCode)
		if err != nil {
			if errors.Is(err, domain.ErrUnknownTenant) {
				return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNKNOWN_TENANT", Message: "tenant desconocido o inactivo"})
			}
			reqLog.Error().Err(err).Str("tenant", id.TenantCode).Msg("resolver tenant")
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "TENANT_LOOKUP_FAILED", Message: "no se pudo resolver el tenant, intente más tarde"})
		}
		if id.TenantID != 0 && tc.TenantID != id.TenantID {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "TENANT_MISMATCH", Message: "el token no corresponde al tenant"})
		}
		tc.UserID = id.UserID

		reqLog = reqLog.With().Str("tenant", tc.TenantCode).Int64("user_id", id.UserID).Logger()
		ctx := tenant.WithTenant(c.UserContext(), tc)
		c.SetUserContext(reqLog.WithContext(ctx))
		return c.Next()
	}
}
