package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/snapshot"
)

// SnapshotHandler inventarios físicos (protegido).
type SnapshotHandler struct {
	uc *snapshot.UseCase
}

// NewSnapshotHandler construye el handler.
func NewSnapshotHandler(uc *snapshot.UseCase) *SnapshotHandler {
	return &SnapshotHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar inventarios
// @Tags         inventories
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSnapshotsRequest  true  "inventories[]"
// @Success      201   {array}   dto.SnapshotDTO
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventories [post]
func (h *SnapshotHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateSnapshotsRequest
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
// @Summary      Listar inventarios
// @Tags         inventories
// @Security     Bearer
// @Produce      json
// @Param        productId        query  int     false  "Producto"
// @Param        stockLocationId  query  int     false  "Ubicación"
// @Param        date             query  string  false  "Día (YYYY-MM-DD)"
// @Success      200  {array}   dto.SnapshotDTO
// @Router       /api/inventories [get]
func (h *SnapshotHandler) List(c *fiber.Ctx) error {
	var f snapshot.ListFilter
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
	out, err := h.uc.List(c.UserContext(), f)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
