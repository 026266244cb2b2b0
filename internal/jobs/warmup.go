package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

// Valuator parte del caso de uso de valorización que usa el precálculo.
type Valuator interface {
	GetDaily(ctx context.Context, days int, locationID *int64) (*dto.ValuationSeriesDTO, error)
}

// WarmupJob rellena la caché de valorización de cada tenant activo para que la
// primera consulta del día no pague el cálculo completo.
type WarmupJob struct {
	directory   tenant.Directory
	valuation   Valuator
	locker      *lock.Locker
	defaultDays int
	timeout     time.Duration
	log         zerolog.Logger
	clock       func() time.Time
}

// NewWarmupJob construye el job. locker nil = sin exclusión entre workers.
func NewWarmupJob(directory tenant.Directory, valuation Valuator, locker *lock.Locker, defaultDays int, timeout time.Duration, log zerolog.Logger) *WarmupJob {
	if defaultDays <= 0 {
		defaultDays = 7
	}
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return &WarmupJob{
		directory:   directory,
		valuation:   valuation,
		locker:      locker,
		defaultDays: defaultDays,
		timeout:     timeout,
		log:         log.With().Str("job", TaskValuationWarmup).Logger(),
		clock:       func() time.Time { return time.Now().UTC() },
	}
}

// WarmupResult resumen de una ejecución.
type WarmupResult struct {
	Warmed  []string
	Skipped []string // lock tomado por otro worker
	Failed  []string
}

// Handle procesa TaskValuationWarmup.
func (j *WarmupJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("valuation warmup: handler no configurado")
	}
	var payload WarmupPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("valuation warmup: payload: %v: %w", err, asynq.SkipRetry)
	}
	_, err := j.Run(ctx, payload)
	return err
}

// Run precalcula la valorización de los tenants del payload. Un tenant que falla
// no detiene a los demás; el error devuelto agrupa todos los fallos.
func (j *WarmupJob) Run(ctx context.Context, payload WarmupPayload) (WarmupResult, error) {
	var res WarmupResult
	days := payload.Days
	if days <= 0 {
		days = j.defaultDays
	}

	tenants, err := j.tenants(ctx, payload.TenantCode)
	if err != nil {
		j.log.Error().Err(err).Msg("cargar tenants")
		return res, err
	}

	start := j.clock()
	j.log.Info().Int("tenants", len(tenants)).Int("days", days).Msg("inicio precálculo")

	var errs []error
	for _, tc := range tenants {
		warmed, err := j.warmTenant(ctx, tc, days)
		switch {
		case err != nil:
			res.Failed = append(res.Failed, tc.TenantCode)
			errs = append(errs, fmt.Errorf("tenant %s: %w", tc.TenantCode, err))
		case warmed:
			res.Warmed = append(res.Warmed, tc.TenantCode)
		default:
			res.Skipped = append(res.Skipped, tc.TenantCode)
		}
	}

	j.log.Info().
		Int("warmed", len(res.Warmed)).
		Int("skipped", len(res.Skipped)).
		Int("failed", len(res.Failed)).
		Dur("duration", j.clock().Sub(start)).
		Msg("fin precálculo")
	return res, errors.Join(errs...)
}

func (j *WarmupJob) tenants(ctx context.Context, code string) ([]tenant.Context, error) {
	if code != "" {
		tc, err := j.directory.Resolve(ctx, code)
		if err != nil {
			return nil, err
		}
		return []tenant.Context{tc}, nil
	}
	return j.directory.List(ctx)
}

// warmTenant devuelve false sin error si otro worker tiene el lock del tenant.
func (j *WarmupJob) warmTenant(ctx context.Context, tc tenant.Context, days int) (bool, error) {
	log := j.log.With().Str("tenant", tc.TenantCode).Logger()

	if j.locker != nil {
		lk, err := j.locker.Acquire(ctx, LockKey(tc.TenantCode))
		if errors.Is(err, lock.ErrNotAcquired) {
			log.Info().Msg("precálculo en curso en otro worker")
			return false, nil
		}
		if err != nil {
			return false, err
		}
		defer func() {
			if err := lk.Release(context.WithoutCancel(ctx)); err != nil {
				log.Warn().Err(err).Msg("liberar lock")
			}
		}()
	}

	scopeCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	scopeCtx = log.WithContext(scopeCtx)

	err := tenant.Run(scopeCtx, tc, func(ctx context.Context) error {
		series, err := j.valuation.GetDaily(ctx, days, nil)
		if err != nil {
			return err
		}
		log.Debug().Int("points", len(series.Points)).Msg("tenant precalculado")
		return nil
	})
	if err != nil {
		log.Error().Err(err).Msg("precálculo falló")
		return false, err
	}
	return true, nil
}

// LockKey clave Redis del lock de precálculo de un tenant.
func LockKey(tenantCode string) string {
	return "valuation:tenant:" + tenantCode + ":warmup:lock"
}
