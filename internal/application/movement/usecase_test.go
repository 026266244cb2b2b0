package movement_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/movement"
	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/tenant"
	"github.com/jhoicas/stock-ledger/internal/testutil/memstore"
)

var now = time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)

func ptr(v int64) *int64 { return &v }

func tenantCtx() context.Context {
	return tenant.WithTenant(context.Background(), tenant.Context{TenantID: 1, TenantCode: "acme", StoreLocator: "mem://acme"})
}

func setup() (*movement.UseCase, *memstore.Store) {
	s := memstore.New()
	s.AddLocation(10, "MAIN")
	s.AddProduct(entity.Product{ID: 1, SKU: "P1", Name: "Jabón", PurchasePrice: decimal.RequireFromString("2.50")})
	s.AddProduct(entity.Product{ID: 2, SKU: "P2", Name: "Crema", PurchasePrice: decimal.RequireFromString("8.00")})
	uc := movement.NewUseCase(memstore.NewTxRunner(s), s.Movements(), s.Products(), s.Locations())
	uc.SetClock(func() time.Time { return now })
	return uc, s
}

// ──────────────────────────────────────────────────────────────────────────────
// Record
// ──────────────────────────────────────────────────────────────────────────────

func TestRecord_AplicaValoresPorDefecto(t *testing.T) {
	uc, s := setup()

	out, err := uc.Record(tenantCtx(), dto.CreateMovementsRequest{Movements: []dto.CreateMovementRequest{
		{ProductID: 1, StockLocationID: 10, QuantityDelta: -3},
	}})
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.NotZero(t, out[0].ID)
	assert.Equal(t, entity.ReasonUnknown, out[0].Reason)
	assert.Equal(t, entity.DocumentOther, out[0].SourceDocumentType)
	assert.Equal(t, now, out[0].OccurredAt)
	assert.Equal(t, 1, s.MovementCount())
}

func TestRecord_LoteAtomico(t *testing.T) {
	uc, s := setup()
	s.FailJournal()

	_, err := uc.Record(tenantCtx(), dto.CreateMovementsRequest{Movements: []dto.CreateMovementRequest{
		{ProductID: 1, StockLocationID: 10, QuantityDelta: 5, Reason: entity.ReasonPurchaseReceipt},
		{ProductID: 2, StockLocationID: 10, QuantityDelta: -1, Reason: entity.ReasonSale},
	}})
	assert.ErrorIs(t, err, memstore.ErrInjected)
	assert.Zero(t, s.MovementCount(), "ninguno debe quedar persistido")
}

func TestRecord_Validacion(t *testing.T) {
	uc, s := setup()
	ctx := tenantCtx()

	cases := map[string]dto.CreateMovementsRequest{
		"lote vacío":      {},
		"delta cero":      {Movements: []dto.CreateMovementRequest{{ProductID: 1, StockLocationID: 10}}},
		"motivo inválido": {Movements: []dto.CreateMovementRequest{{ProductID: 1, StockLocationID: 10, QuantityDelta: 1, Reason: "GIFT"}}},
		"producto cero":   {Movements: []dto.CreateMovementRequest{{StockLocationID: 10, QuantityDelta: 1}}},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := uc.Record(ctx, req)
			assert.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
	assert.Zero(t, s.MovementCount())
}

func TestRecord_CatalogoDesconocido(t *testing.T) {
	uc, _ := setup()
	ctx := tenantCtx()

	_, err := uc.Record(ctx, dto.CreateMovementsRequest{Movements: []dto.CreateMovementRequest{{ProductID: 9, StockLocationID: 10, QuantityDelta: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Record(ctx, dto.CreateMovementsRequest{Movements: []dto.CreateMovementRequest{{ProductID: 1, StockLocationID: 99, QuantityDelta: 1}}})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// List / DisposalSummary
// ──────────────────────────────────────────────────────────────────────────────

func TestList_FiltraPorDiaYMotivo(t *testing.T) {
	uc, s := setup()
	s.AddMovement(1, 10, -1, entity.ReasonSale, now.Add(-time.Hour))
	s.AddMovement(1, 10, -2, entity.ReasonDonation, now.Add(-2*time.Hour))
	s.AddMovement(1, 10, -4, entity.ReasonSale, now.AddDate(0, 0, -1))

	day := now
	list, err := uc.List(tenantCtx(), movement.ListFilter{ProductID: ptr(1), Reasons: []string{entity.ReasonSale}, Day: &day})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, int64(-1), list[0].QuantityDelta)

	_, err = uc.List(tenantCtx(), movement.ListFilter{Reasons: []string{"GIFT"}})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDisposalSummary_AgrupaPorProductoYMotivo(t *testing.T) {
	uc, s := setup()
	s.AddMovement(1, 10, -2, entity.ReasonDonation, now.Add(-time.Hour))
	s.AddMovement(1, 10, -1, entity.ReasonDisposal, now.Add(-time.Hour))
	s.AddMovement(2, 10, -3, entity.ReasonPersonalUse, now.Add(-time.Hour))
	s.AddMovement(2, 10, -9, entity.ReasonSale, now.Add(-time.Hour)) // venta: no cuenta

	sum, err := uc.DisposalSummary(tenantCtx(), nil, nil)
	require.NoError(t, err)
	require.Len(t, sum.Lines, 2)

	p1 := sum.Lines[0]
	assert.Equal(t, int64(1), p1.ProductID)
	assert.Equal(t, "P1", p1.SKU)
	assert.Equal(t, int64(2), p1.Quantities[entity.ReasonDonation])
	assert.Equal(t, int64(500), p1.AmountsCents[entity.ReasonDonation])
	assert.Equal(t, int64(3), p1.TotalQuantity)
	assert.Equal(t, int64(750), p1.TotalCents)

	p2 := sum.Lines[1]
	assert.Equal(t, int64(2400), p2.AmountsCents[entity.ReasonPersonalUse])

	assert.Equal(t, int64(6), sum.TotalQuantity)
	assert.Equal(t, int64(750+2400), sum.TotalCents)
	assert.Equal(t, int64(2400), sum.TotalsCents[entity.ReasonPersonalUse])
}

func TestDisposalSummary_DeltaPositivoCuentaComoSalida(t *testing.T) {
	uc, s := setup()
	s.AddMovement(1, 10, 3, entity.ReasonDonation, now.Add(-time.Hour))
	s.AddMovement(1, 10, -1, entity.ReasonDonation, now.Add(-time.Hour))

	sum, err := uc.DisposalSummary(tenantCtx(), nil, nil)
	require.NoError(t, err)
	require.Len(t, sum.Lines, 1)
	assert.Equal(t, int64(4), sum.Lines[0].Quantities[entity.ReasonDonation])
	assert.Equal(t, int64(1000), sum.Lines[0].AmountsCents[entity.ReasonDonation])
	assert.Equal(t, int64(1000), sum.TotalCents)
}

func TestDisposalSummary_RangoInvertido(t *testing.T) {
	uc, _ := setup()
	from, to := now, now.Add(-time.Hour)
	_, err := uc.DisposalSummary(tenantCtx(), &from, &to)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
