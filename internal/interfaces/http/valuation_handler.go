package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/valuation"
	"github.com/jhoicas/stock-ledger/internal/jobs"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// WarmupEnqueuer encola precálculos de valorización (lo implementa *jobs.Client).
type WarmupEnqueuer interface {
	EnqueueWarmup(ctx context.Context, payload jobs.WarmupPayload) (string, error)
}

// ValuationHandler valorización diaria del stock (protegido).
type ValuationHandler struct {
	uc          *valuation.UseCase
	enqueuer    WarmupEnqueuer
	defaultDays int
}

// NewValuationHandler construye el handler. enqueuer puede ser nil (sin Redis).
func NewValuationHandler(uc *valuation.UseCase, enqueuer WarmupEnqueuer, defaultDays int) *ValuationHandler {
	if defaultDays <= 0 {
		defaultDays = 30
	}
	return &ValuationHandler{uc: uc, enqueuer: enqueuer, defaultDays: defaultDays}
}

// Daily godoc
// @Summary      Valorización diaria del stock
// @Description  Un punto por día (hoy incluido). Los días ya calculados salen de la caché.
// @Tags         stock-valuations
// @Security     Bearer
// @Produce      json
// @Param        days             query  int     false  "Cantidad de días (por defecto 30)"
// @Param        stockLocationId  query  string  false  "all o ID de ubicación"
// @Success      200  {object}  dto.ValuationSeriesDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock-valuations [get]
func (h *ValuationHandler) Daily(c *fiber.Ctx) error {
	days, err := queryDays(c, h.defaultDays)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	locationID, err := queryLocation(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	out, err := h.uc.GetDaily(c.UserContext(), days, locationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Report godoc
// @Summary      Informe PDF de la valorización diaria
// @Tags         stock-valuations
// @Security     Bearer
// @Produce      application/pdf
// @Param        days             query  int     false  "Cantidad de días (por defecto 30)"
// @Param        stockLocationId  query  string  false  "all o ID de ubicación"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock-valuations/report.pdf [get]
func (h *ValuationHandler) Report(c *fiber.Ctx) error {
	days, err := queryDays(c, h.defaultDays)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	locationID, err := queryLocation(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	pdf, filename, err := h.uc.Report(c.UserContext(), days, locationID)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+filename+`"`)
	return c.Send(pdf)
}

// PurgeCache godoc
// @Summary      Vaciar la caché de valorizaciones del tenant
// @Tags         stock-valuations
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.PurgeCacheResponse
// @Failure      403  {object}  dto.ErrorResponse
// @Router       /api/stock-valuations/cache [delete]
func (h *ValuationHandler) PurgeCache(c *fiber.Ctx) error {
	n, err := h.uc.PurgeCache(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.PurgeCacheResponse{Deleted: n})
}

// Warmup godoc
// @Summary      Encolar el precálculo de valorizaciones del tenant
// @Tags         stock-valuations
// @Security     Bearer
// @Produce      json
// @Param        days  query  int  false  "Cantidad de días (por defecto 30)"
// @Success      202  {object}  map[string]string
// @Failure      503  {object}  dto.ErrorResponse
// @Router       /api/stock-valuations/warmup [post]
func (h *ValuationHandler) Warmup(c *fiber.Ctx) error {
	if h.enqueuer == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{Code: "JOBS_DISABLED", Message: "el worker de jobs no está configurado"})
	}
	days, err := queryDays(c, h.defaultDays)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	tc, err := tenant.Require(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	taskID, err := h.enqueuer.EnqueueWarmup(c.UserContext(), jobs.WarmupPayload{Days: days, TenantCode: tc.TenantCode})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"task_id": taskID})
}
