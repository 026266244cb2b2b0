package tenant_test

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/tenant"
)

var (
	tenantA = tenant.Context{TenantID: 1, TenantCode: "alpha", StoreLocator: "postgres://alpha/db"}
	tenantB = tenant.Context{TenantID: 2, TenantCode: "beta", StoreLocator: "postgres://beta/db"}
)

func TestFromContext_FueraDeScope(t *testing.T) {
	_, ok := tenant.FromContext(context.Background())
	assert.False(t, ok)

	_, err := tenant.Require(context.Background())
	assert.ErrorIs(t, err, domain.ErrMissingTenantContext)
}

func TestRun_AsociaElTenant(t *testing.T) {
	err := tenant.Run(context.Background(), tenantA, func(ctx context.Context) error {
		tc, err := tenant.Require(ctx)
		require.NoError(t, err)
		assert.Equal(t, tenantA, tc)
		return nil
	})
	require.NoError(t, err)
}

func TestRun_PropagaErrorDeFn(t *testing.T) {
	boom := fmt.Errorf("boom")
	err := tenant.Run(context.Background(), tenantA, func(context.Context) error { return boom })
	assert.ErrorIs(t, err, boom)
}

func TestRun_SinLocatorEsInvalido(t *testing.T) {
	called := false
	err := tenant.Run(context.Background(), tenant.Context{TenantCode: "x"}, func(context.Context) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.False(t, called)
}

// Un Run anidado cambia el tenant solo para su sub-scope.
func TestRun_AnidadoNoAfectaAlLlamador(t *testing.T) {
	err := tenant.Run(context.Background(), tenantA, func(outer context.Context) error {
		err := tenant.Run(outer, tenantB, func(inner context.Context) error {
			tc, _ := tenant.FromContext(inner)
			assert.Equal(t, "beta", tc.TenantCode)
			return nil
		})
		require.NoError(t, err)

		tc, _ := tenant.FromContext(outer)
		assert.Equal(t, "alpha", tc.TenantCode)
		return nil
	})
	require.NoError(t, err)
}

// El tenant sobrevive a goroutines y timers lanzados dentro del scope.
func TestRun_PropagaAGoroutinesYTimers(t *testing.T) {
	err := tenant.Run(context.Background(), tenantB, func(ctx context.Context) error {
		done := make(chan string, 1)
		time.AfterFunc(5*time.Millisecond, func() {
			go func() {
				tc, _ := tenant.FromContext(ctx)
				done <- tc.StoreLocator
			}()
		})
		assert.Equal(t, tenantB.StoreLocator, <-done)
		return nil
	})
	require.NoError(t, err)
}

// 50 peticiones concurrentes alternando dos tenants: cada lectura ve solo su tenant.
func TestRun_AislamientoEntrePeticionesConcurrentes(t *testing.T) {
	const requests = 50
	var wg sync.WaitGroup
	errs := make(chan error, requests)

	for i := 0; i < requests; i++ {
		want := tenantA
		if i%2 == 1 {
			want = tenantB
		}
		wg.Add(1)
		go func(want tenant.Context) {
			defer wg.Done()
			errs <- tenant.Run(context.Background(), want, func(ctx context.Context) error {
				for step := 0; step < 20; step++ {
					runtime.Gosched()
					time.Sleep(time.Duration(step%3) * time.Millisecond)
					tc, err := tenant.Require(ctx)
					if err != nil {
						return err
					}
					if tc.StoreLocator != want.StoreLocator {
						return fmt.Errorf("paso %d: locator %q, esperado %q", step, tc.StoreLocator, want.StoreLocator)
					}
				}
				return nil
			})
		}(want)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
