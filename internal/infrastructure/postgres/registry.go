package postgres

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/jhoicas/stock-ledger/internal/domain"
)

const defaultBuildTimeout = 15 * time.Second

// ErrRegistryClosed se devuelve al pedir un pool después de CloseAll.
var ErrRegistryClosed = errors.New("registro de pools cerrado")

// PoolFactory construye el pool de una base a partir de su URL de conexión.
type PoolFactory func(ctx context.Context, locator string) (*pgxpool.Pool, error)

// Registry mantiene un pool por base de tenant, creado en el primer uso.
// Los pools viven hasta CloseAll: no hay desalojo por inactividad, así que la
// memoria crece con el número de tenants distintos atendidos por el proceso.
type Registry struct {
	handles sync.Map // locator -> *pgxpool.Pool
	group   singleflight.Group
	factory PoolFactory
	log     zerolog.Logger

	buildTimeout time.Duration
	closeTimeout time.Duration
	closed       atomic.Bool
}

// NewRegistry construye el registro. closeTimeout limita la espera de cada pool en CloseAll.
func NewRegistry(factory PoolFactory, log zerolog.Logger, closeTimeout time.Duration) *Registry {
	if closeTimeout <= 0 {
		closeTimeout = 5 * time.Second
	}
	return &Registry{
		factory:      factory,
		log:          log.With().Str("component", "tenant_pools").Logger(),
		buildTimeout: defaultBuildTimeout,
		closeTimeout: closeTimeout,
	}
}

// HandleFor devuelve el pool registrado para locator o lo crea.
// Llamadas concurrentes con el mismo locator comparten una única construcción;
// locators distintos se construyen en paralelo.
func (r *Registry) HandleFor(ctx context.Context, locator string) (*pgxpool.Pool, error) {
	if locator == "" {
		return nil, fmt.Errorf("store locator vacío: %w", domain.ErrInvalidInput)
	}
	if r.closed.Load() {
		return nil, ErrRegistryClosed
	}
	if v, ok := r.handles.Load(locator); ok {
		return v.(*pgxpool.Pool), nil
	}

	ch := r.group.DoChan(locator, func() (any, error) {
		if v, ok := r.handles.Load(locator); ok {
			return v, nil
		}
		// La construcción no depende de la petición que la disparó: si esa se cancela,
		// las que esperan el mismo pool siguen recibiéndolo.
		buildCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.buildTimeout)
		defer cancel()

		pool, err := r.factory(buildCtx, locator)
		if err != nil {
			return nil, fmt.Errorf("crear pool para %s: %w", redactLocator(locator), err)
		}
		if r.closed.Load() {
			pool.Close()
			return nil, ErrRegistryClosed
		}
		r.handles.Store(locator, pool)
		r.log.Info().Str("store", redactLocator(locator)).Msg("pool de tenant creado")
		return pool, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*pgxpool.Pool), nil
	}
}

// Len número de pools registrados.
func (r *Registry) Len() int {
	n := 0
	r.handles.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// CloseAll cierra todos los pools. Un pool que falla o no termina a tiempo se
// registra en el log y se abandona; el cierre de los demás continúa.
func (r *Registry) CloseAll(ctx context.Context) {
	r.closed.Store(true)

	var wg sync.WaitGroup
	r.handles.Range(func(key, value any) bool {
		locator := key.(string)
		pool := value.(*pgxpool.Pool)
		r.handles.Delete(key)

		wg.Add(1)
		go func() {
			defer wg.Done()
			r.closeOne(ctx, locator, pool)
		}()
		return true
	})
	wg.Wait()
}

func (r *Registry) closeOne(ctx context.Context, locator string, pool *pgxpool.Pool) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if rec := recover(); rec != nil {
				r.log.Error().Str("store", redactLocator(locator)).Interface("panic", rec).Msg("panic cerrando pool")
			}
		}()
		pool.Close()
	}()

	timer := time.NewTimer(r.closeTimeout)
	defer timer.Stop()
	select {
	case <-done:
	case <-timer.C:
		r.log.Error().Str("store", redactLocator(locator)).Dur("timeout", r.closeTimeout).Msg("timeout cerrando pool")
	case <-ctx.Done():
		r.log.Error().Err(ctx.Err()).Str("store", redactLocator(locator)).Msg("cierre de pool interrumpido")
	}
}

// redactLocator oculta la contraseña de la URL para los logs.
func redactLocator(locator string) string {
	u, err := url.Parse(locator)
	if err != nil {
		return "<locator inválido>"
	}
	return u.Redacted()
}
