package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/movement"
	"github.com/jhoicas/stock-ledger/internal/application/snapshot"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/application/valuation"
	infrapdf "github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/tenants"
	httpRouter "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/internal/jobs"
	"github.com/jhoicas/stock-ledger/internal/tenant"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

const swaggerFile = "./docs/swagger.json"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Msg("iniciando aplicación")

	ctx := context.Background()

	// Directorio de tenants: archivo YAML o tabla tenants de la base maestra
	var directory tenant.Directory
	if cfg.Tenants.Path != "" {
		fileDir, err := tenants.Load(cfg.Tenants.Path)
		if err != nil {
			log.Fatal().Err(err).Msg("directorio de tenants")
		}
		directory = fileDir
	} else {
		master, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a la base maestra")
		}
		defer master.Close()
		directory = postgres.NewTenantDirectory(master)
	}

	// Un pool por base de tenant, creado en el primer uso
	registry := postgres.NewRegistry(postgres.NewTenantPoolFactory(cfg.TenantPool), log.Component("registry"), cfg.TenantPool.CloseTimeout)
	conn := postgres.NewTenantConnector(registry)
	txRunner := postgres.NewTxRunner(registry)

	movementRepo := postgres.NewStockMovementRepository(conn)
	snapshotRepo := postgres.NewInventorySnapshotRepository(conn)
	valuationRepo := postgres.NewDailyValuationRepository(conn)
	productRepo := postgres.NewProductRepository(conn)
	locationRepo := postgres.NewStockLocationRepository(conn)

	stockUC := stock.NewUseCase(movementRepo, snapshotRepo, productRepo, locationRepo)
	movementUC := movement.NewUseCase(txRunner, movementRepo, productRepo, locationRepo)
	snapshotUC := snapshot.NewUseCase(txRunner, snapshotRepo, productRepo, locationRepo)
	valuationUC := valuation.NewUseCase(
		valuationRepo, txRunner, movementRepo, snapshotRepo, productRepo, locationRepo,
		infrapdf.NewMarotoReportGenerator(),
		valuation.Config{
			MaxDays:      cfg.Valuation.MaxDays,
			Currency:     cfg.Valuation.Currency,
			RefreshToday: cfg.Valuation.RefreshToday,
			Timeout:      cfg.Valuation.Timeout,
		},
		log.Zerolog(),
	)

	// Cliente de jobs solo si hay Redis configurado
	var enqueuer httpRouter.WarmupEnqueuer
	if cfg.Redis.Addr != "" {
		client := jobs.NewClient(asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer client.Close()
		enqueuer = client
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: cfg.Valuation.Timeout + 5*time.Second,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "Stock Ledger API",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": cfg.App.Name, "tenant_pools": registry.Len()})
	})

	httpRouter.Router(app, httpRouter.RouterDeps{
		StockUC:              stockUC,
		ValuationUC:          valuationUC,
		MovementUC:           movementUC,
		SnapshotUC:           snapshotUC,
		Directory:            directory,
		Enqueuer:             enqueuer,
		ValuationDefaultDays: cfg.Valuation.DefaultDays,
		JWTSecret:            cfg.JWT.Secret,
		Log:                  log.Component("http"),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	registry.CloseAll(shutdownCtx)

	log.Info().Msg("aplicación detenida")
}
