package stock_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/tenant"
	"github.com/jhoicas/stock-ledger/internal/testutil/memstore"
)

var day0 = time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

func at(day, hour int) time.Time {
	return day0.AddDate(0, 0, day).Add(time.Duration(hour) * time.Hour)
}

func ptr(v int64) *int64 { return &v }

func tenantCtx() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Context{TenantID: 1, TenantCode: "acme", StoreLocator: "mem://acme"})
}

func setup() (*stock.UseCase, *memstore.Store) {
	s := memstore.New()
	s.AddLocation(10, "MAIN")
	s.AddLocation(20, "SHOP")
	s.AddProduct(entity.Product{ID: 1, SKU: "SKU-1", Name: "Jabón", PurchasePrice: decimal.RequireFromString("2.50")})
	s.AddProduct(entity.Product{ID: 2, SKU: "SKU-2", Name: "Crema", PurchasePrice: decimal.RequireFromString("8.00")})
	uc := stock.NewUseCase(s.Movements(), s.Snapshots(), s.Products(), s.Locations())
	return uc, s
}

// ──────────────────────────────────────────────────────────────────────────────
// StockAt
// ──────────────────────────────────────────────────────────────────────────────

func TestStockAt_SinDatosEsCero(t *testing.T) {
	uc, _ := setup()
	got, err := uc.StockAt(tenantCtx(), 1, ptr(10), at(3, 0))
	require.NoError(t, err)
	assert.Zero(t, got)

	got, err = uc.StockAt(tenantCtx(), 1, nil, at(3, 0))
	require.NoError(t, err)
	assert.Zero(t, got)
}

func TestStockAt_EjemploDeReferencia(t *testing.T) {
	uc, s := setup()
	s.AddSnapshot(1, 10, 120, at(0, 8))
	s.AddMovement(1, 10, -4, entity.ReasonSale, at(0, 10))
	s.AddMovement(1, 10, 7, entity.ReasonPurchaseReceipt, at(2, 9))
	ctx := tenantCtx()

	cases := []struct {
		at   time.Time
		want int64
	}{
		{at(0, 7), 0},
		{at(0, 8), 120},
		{at(1, 0), 116},
		{at(3, 0), 123},
	}
	for _, c := range cases {
		got, err := uc.StockAt(ctx, 1, ptr(10), c.at)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "at %s", c.at)

		all, err := uc.StockAt(ctx, 1, nil, c.at)
		require.NoError(t, err)
		assert.Equal(t, c.want, all, "todas las ubicaciones at %s", c.at)
	}
}

// Cada ubicación usa su propio inventario: el de otra ubicación no reemplaza la base.
func TestStockAt_TodasLasUbicacionesSumaPorPar(t *testing.T) {
	uc, s := setup()
	s.AddSnapshot(1, 10, 50, at(0, 0))
	s.AddMovement(1, 10, -5, entity.ReasonSale, at(1, 0))
	s.AddSnapshot(1, 20, 7, at(2, 0))
	s.AddMovement(1, 20, 3, entity.ReasonPurchaseReceipt, at(1, 0)) // anterior al inventario de 20
	s.AddMovement(1, 20, -1, entity.ReasonSale, at(3, 0))
	s.AddMovement(2, 10, 99, entity.ReasonPurchaseReceipt, at(1, 0)) // otro producto

	ctx := tenantCtx()
	got, err := uc.StockAt(ctx, 1, nil, at(4, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(45+6), got)

	loc20, err := uc.StockAt(ctx, 1, ptr(20), at(4, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(6), loc20)
}

func TestStockAt_NegativoSeDevuelveTalCual(t *testing.T) {
	uc, s := setup()
	s.AddMovement(1, 10, -3, entity.ReasonSale, at(0, 1))
	got, err := uc.StockAt(tenantCtx(), 1, ptr(10), at(1, 0))
	require.NoError(t, err)
	assert.Equal(t, int64(-3), got)
}

func TestStockAt_Errores(t *testing.T) {
	uc, _ := setup()
	ctx := tenantCtx()

	_, err := uc.StockAt(ctx, 99, nil, at(1, 0))
	assert.ErrorIs(t, err, domain.ErrNotFound, "producto desconocido")

	_, err = uc.StockAt(ctx, 1, ptr(999), at(1, 0))
	assert.ErrorIs(t, err, domain.ErrNotFound, "ubicación desconocida")

	_, err = uc.StockAt(ctx, 1, nil, time.Time{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = uc.StockAt(ctx, 0, nil, at(1, 0))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestStockAt_SinTenantFalla(t *testing.T) {
	uc, _ := setup()
	_, err := uc.StockAt(context.Background(), 1, ptr(10), at(1, 0))
	assert.ErrorIs(t, err, domain.ErrMissingTenantContext)
}

func TestCurrentStock_UsaElReloj(t *testing.T) {
	uc, s := setup()
	s.AddSnapshot(1, 10, 10, at(0, 0))
	s.AddMovement(1, 10, 5, entity.ReasonPurchaseReceipt, at(2, 0))
	uc.SetClock(func() time.Time { return at(1, 0) })

	got, err := uc.CurrentStock(tenantCtx(), 1, ptr(10))
	require.NoError(t, err)
	assert.Equal(t, int64(10), got)
}

// ──────────────────────────────────────────────────────────────────────────────
// MovementsFor
// ──────────────────────────────────────────────────────────────────────────────

func TestMovementsFor_MasRecientePrimero(t *testing.T) {
	uc, s := setup()
	s.AddMovement(1, 10, 1, entity.ReasonPurchaseReceipt, at(0, 0))
	s.AddMovement(1, 20, -1, entity.ReasonSale, at(2, 0))
	s.AddMovement(2, 10, 4, entity.ReasonPurchaseReceipt, at(1, 0))
	s.AddMovement(1, 10, 2, entity.ReasonAdjustment, at(1, 0))

	list, err := uc.MovementsFor(tenantCtx(), 1)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, at(2, 0), list[0].OccurredAt)
	assert.Equal(t, at(1, 0), list[1].OccurredAt)
	assert.Equal(t, at(0, 0), list[2].OccurredAt)
	for _, m := range list {
		assert.Equal(t, int64(1), m.ProductID)
	}
}

func TestMovementsFor_ProductoDesconocido(t *testing.T) {
	uc, _ := setup()
	_, err := uc.MovementsFor(tenantCtx(), 42)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
