package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/stock-ledger/internal/application/valuation"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/tenants"
	"github.com/jhoicas/stock-ledger/internal/jobs"
	"github.com/jhoicas/stock-ledger/internal/tenant"
	"github.com/jhoicas/stock-ledger/pkg/config"
	"github.com/jhoicas/stock-ledger/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: "info",
	})
	if cfg.Redis.Addr == "" {
		log.Fatal().Msg("REDIS_ADDR requerido para el worker")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	registry := postgres.NewRegistry(postgres.NewTenantPoolFactory(cfg.TenantPool), log.Component("registry"), cfg.TenantPool.CloseTimeout)
	defer registry.CloseAll(context.Background())
	conn := postgres.NewTenantConnector(registry)

	valuationUC := valuation.NewUseCase(
		postgres.NewDailyValuationRepository(conn),
		postgres.NewTxRunner(registry),
		postgres.NewStockMovementRepository(conn),
		postgres.NewInventorySnapshotRepository(conn),
		postgres.NewProductRepository(conn),
		postgres.NewStockLocationRepository(conn),
		nil,
		valuation.Config{
			MaxDays:      cfg.Valuation.MaxDays,
			Currency:     cfg.Valuation.Currency,
			RefreshToday: cfg.Valuation.RefreshToday,
			Timeout:      cfg.Valuation.Timeout,
		},
		log.Zerolog(),
	)

	redisClient, err := lock.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("conexión a Redis")
	}
	defer redisClient.Close()

	warmup := jobs.NewWarmupJob(directory, valuationUC, lock.NewLocker(redisClient, cfg.Jobs.LockTTL),
		cfg.Jobs.WarmupDays, cfg.Valuation.Timeout, log.Component("jobs"))

	nightly, err := jobs.NewWarmupTask(jobs.WarmupPayload{Days: cfg.Jobs.WarmupDays})
	if err != nil {
		log.Fatal().Err(err).Msg("tarea de precálculo")
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB},
		Log:       log.Component("asynq"),
		Handlers: []jobs.TaskHandler{
			{Type: jobs.TaskValuationWarmup, Handler: warmup.Handle},
		},
		Cron: []jobs.CronRegistration{
			{Spec: cfg.Jobs.WarmupCron, Task: nightly},
		},
	})
	if err != nil {
		log.Fatal().Err(err).Msg("construir worker")
	}

	log.Info().Str("cron", cfg.Jobs.WarmupCron).Int("days", cfg.Jobs.WarmupDays).Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado")
	}
	log.Info().Msg("worker detenido")
}
