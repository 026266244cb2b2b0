package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/movement"
	"github.com/jhoicas/stock-ledger/internal/application/snapshot"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/application/valuation"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// RoleAdmin rol con permiso para operaciones de mantenimiento.
const RoleAdmin = "ADMIN"

// RouterDeps dependencias para el router.
type RouterDeps struct {
	StockUC              *stock.UseCase
	ValuationUC          *valuation.UseCase
	MovementUC           *movement.UseCase
	SnapshotUC           *snapshot.UseCase
	Directory            tenant.Directory
	Enqueuer             WarmupEnqueuer // nil = sin worker
	ValuationDefaultDays int
	JWTSecret            string
	Log                  zerolog.Logger
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Todas las rutas requieren Bearer Token y quedan asociadas al tenant del token
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret), TenantScope(deps.Directory, deps.Log))

	stockHandler := NewStockHandler(deps.StockUC)
	stockGroup := protected.Group("/stock")
	stockGroup.Get("/:productId", stockHandler.Current)
	stockGroup.Get("/:productId/at/:date", stockHandler.At)
	stockGroup.Get("/:productId/variations", stockHandler.Variations)

	valuationHandler := NewValuationHandler(deps.ValuationUC, deps.Enqueuer, deps.ValuationDefaultDays)
	valuations := protected.Group("/stock-valuations")
	valuations.Get("/", valuationHandler.Daily)
	valuations.Get("/report.pdf", valuationHandler.Report)
	valuations.Delete("/cache", RequireRole(RoleAdmin), valuationHandler.PurgeCache)
	valuations.Post("/warmup", RequireRole(RoleAdmin), valuationHandler.Warmup)

	movementHandler := NewMovementHandler(deps.MovementUC)
	movements := protected.Group("/stock-movements")
	movements.Post("/", movementHandler.Create)
	movements.Get("/", movementHandler.List)
	movements.Get("/disposals", movementHandler.Disposals)

	snapshotHandler := NewSnapshotHandler(deps.SnapshotUC)
	inventories := protected.Group("/inventories")
	inventories.Post("/", snapshotHandler.Create)
	inventories.Get("/", snapshotHandler.List)
}
