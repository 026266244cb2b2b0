package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
)

// StockHandler consultas de stock reconstruido (protegido).
type StockHandler struct {
	uc  *stock.UseCase
	now func() time.Time
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *stock.UseCase) *StockHandler {
	return &StockHandler{uc: uc, now: time.Now}
}

// Current godoc
// @Summary      Stock actual de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId        path   int     true   "ID del producto"
// @Param        stockLocationId  query  int     false  "Ubicación; vacío = todas"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId} [get]
func (h *StockHandler) Current(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	locationID, err := queryOptionalID(c, "stockLocationId")
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	qty, err := h.uc.CurrentStock(c.UserContext(), productID, locationID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: productID, StockLocationID: locationID, At: h.now().UTC(), Stock: qty})
}

// At godoc
// @Summary      Stock de un producto en una fecha
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId        path   int     true   "ID del producto"
// @Param        date             path   string  true   "Fecha ISO (YYYY-MM-DD o RFC3339)"
// @Param        stockLocationId  query  int     false  "Ubicación; vacío = todas"
// @Success      200  {object}  dto.StockResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/at/{date} [get]
func (h *StockHandler) At(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	at, err := parseDate(c.Params("date"))
	if err != nil {
		return badRequest(c, "INVALID_DATE", err.Error())
	}
	locationID, err := queryOptionalID(c, "stockLocationId")
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	qty, err := h.uc.StockAt(c.UserContext(), productID, locationID, at)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(dto.StockResponse{ProductID: productID, StockLocationID: locationID, At: at, Stock: qty})
}

// Variations godoc
// @Summary      Movimientos de un producto (más reciente primero)
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  int  true  "ID del producto"
// @Success      200  {array}   dto.MovementDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{productId}/variations [get]
func (h *StockHandler) Variations(c *fiber.Ctx) error {
	productID, err := paramID(c, "productId")
	if err != nil {
		return badRequest(c, "INVALID_ID", err.Error())
	}
	list, err := h.uc.MovementsFor(c.UserContext(), productID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(list)
}
