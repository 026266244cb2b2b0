package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/movement"
)

// MovementHandler diario de movimientos de stock (protegido).
type MovementHandler struct {
	uc *movement.UseCase
}

// NewMovementHandler construye el handler.
func NewMovementHandler(uc *movement.UseCase) *MovementHandler {
	return &MovementHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar movimientos en lote
// @Description  Todos los movimientos entran en una sola transacción: o se guardan todos o ninguno.
// @Tags         stock-movements
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateMovementsRequest  true  "movements[]"
// @Success      201   {array}   dto.MovementDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock-movements [post]
func (h *MovementHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateMovementsRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Record(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar movimientos
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        productId        query  int     false  "Producto"
// @Param        stockLocationId  query  int     false  "Ubicación"
// @Param        reason           query  string  false  "Motivos separados por coma"
// @Param        date             query  string  false  "Día (YYYY-MM-DD)"
// @Success      200  {array}   dto.MovementDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements [get]
func (h *MovementHandler) List(c *fiber.Ctx) error {
	var f movement.ListFilter
	var err error
	if f.ProductID, err = queryOptionalID(c, "productId"); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	if f.LocationID, err = queryOptionalID(c, "stockLocationId"); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	if f.Day, err = queryOptionalDate(c, "date"); err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	if raw := c.Query("reason"); raw != "" {
		for _, r := range strings.Split(raw, ",") {
			if r = strings.ToUpper(strings.TrimSpace(r)); r != "" {
				f.Reasons = append(f.Reasons, r)
			}
		}
	}
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Disposals godoc
// @Summary      Resumen de bajas sin venta
// @Description  Donaciones, destrucciones y uso propio por producto, valorizadas al precio de compra.
// @Tags         stock-movements
// @Security     Bearer
// @Produce      json
// @Param        from  query  string  false  "Desde (ISO)"
// @Param        to    query  string  false  "Hasta (ISO)"
// @Success      200  {object}  dto.DisposalSummaryDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/stock-movements/disposals [get]
func (h *MovementHandler) Disposals(c *fiber.Ctx) error {
	from, err := queryOptionalDate(c, "from")
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	to, err := queryOptionalDate(c, "to")
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	out, err := h.uc.DisposalSummary(c.UserContext(), from, to)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
