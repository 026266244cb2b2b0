package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger/internal/application/dto"
	"github.com/jhoicas/stock-ledger/internal/application/movement"
	"github.com/jhoicas/stock-ledger/internal/application/snapshot"
	"github.com/jhoicas/stock-ledger/internal/application/stock"
	"github.com/jhoicas/stock-ledger/internal/application/valuation"
	"github.com/jhoicas/stock-ledger/internal/domain/entity"
	"github.com/jhoicas/stock-ledger/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/stock-ledger/internal/interfaces/http"
	"github.com/jhoicas/stock-ledger/internal/jobs"
	"github.com/jhoicas/stock-ledger/internal/tenant"
	"github.com/jhoicas/stock-ledger/internal/testutil/memstore"
	pkgjwt "github.com/jhoicas/stock-ledger/pkg/jwt"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

var valuationNow = time.Date(2024, 3, 15, 14, 0, 0, 0, time.UTC)

func ts(s string) time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return t
}

type fakeEnqueuer struct {
	payloads []jobs.WarmupPayload
}

func (e *fakeEnqueuer) EnqueueWarmup(_ context.Context, p jobs.WarmupPayload) (string, error) {
	e.payloads = append(e.payloads, p)
	return "task-1", nil
}

type apiFixture struct {
	app   *fiber.App
	store *memstore.Store
	user  string
	admin string
}

func newAPI(t *testing.T, enqueuer apphttp.WarmupEnqueuer) apiFixture {
	t.Helper()
	s := memstore.New()
	s.AddLocation(10, "MAIN")
	s.AddLocation(20, "SHOP")
	s.AddProduct(entity.Product{ID: 1, SKU: "P1", Name: "Jabón", PurchasePrice: decimal.RequireFromString("2.50")})
	s.AddProduct(entity.Product{ID: 2, SKU: "P2", Name: "Crema", PurchasePrice: decimal.RequireFromString("8.00")})

	// inventario 120 el 10/03 08:00, -4 a las 10:00, +7 el 12/03
	s.AddSnapshot(1, 10, 120, ts("2024-03-10T08:00:00Z"))
	s.AddMovement(1, 10, -4, entity.ReasonSale, ts("2024-03-10T10:00:00Z"))
	s.AddMovement(1, 10, 7, entity.ReasonPurchaseReceipt, ts("2024-03-12T09:00:00Z"))

	tx := memstore.NewTxRunner(s)
	valUC := valuation.NewUseCase(s.Valuations(), tx, s.Movements(), s.Snapshots(), s.Products(), s.Locations(),
		pdf.NewMarotoReportGenerator(), valuation.Config{MaxDays: 90, Currency: "EUR"}, zerolog.Nop())
	valUC.SetClock(func() time.Time { return valuationNow })

	dir := &fakeDirectory{tenants: map[string]tenant.Context{
		"acme": {TenantID: 1, TenantCode: "acme", StoreLocator: "mem://acme"},
	}}

	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		StockUC:              stock.NewUseCase(s.Movements(), s.Snapshots(), s.Products(), s.Locations()),
		ValuationUC:          valUC,
		MovementUC:           movement.NewUseCase(tx, s.Movements(), s.Products(), s.Locations()),
		SnapshotUC:           snapshot.NewUseCase(tx, s.Snapshots(), s.Products(), s.Locations()),
		Directory:            dir,
		Enqueuer:             enqueuer,
		ValuationDefaultDays: 30,
		JWTSecret:            testJWTSecret,
		Log:                  zerolog.Nop(),
	})
	return apiFixture{
		app:   app,
		store: s,
		user:  bearer(t, identity("USER")),
		admin: bearer(t, identity("ADMIN")),
	}
}

func (f apiFixture) do(t *testing.T, method, path, auth string, body interface{}) *http.Response {
	t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeInto(t *testing.T, resp *http.Response, v interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(v))
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func TestStock_ActualYEnFecha(t *testing.T) {
	f := newAPI(t, nil)

	cases := []struct {
		path string
		want int64
	}{
		{"/api/stock/1", 123},
		{"/api/stock/1?stockLocationId=10", 123},
		{"/api/stock/1?stockLocationId=20", 0},
		{"/api/stock/1/at/2024-03-11", 116},
		{"/api/stock/1/at/2024-03-10T09:00:00Z", 120},
		{"/api/stock/1/at/2024-03-09", 0},
	}
	for _, tc := range cases {
		resp := f.do(t, http.MethodGet, tc.path, f.user, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode, tc.path)
		var out dto.StockResponse
		decodeInto(t, resp, &out)
		assert.Equal(t, tc.want, out.Stock, tc.path)
	}
}

func TestStock_Errores(t *testing.T) {
	f := newAPI(t, nil)

	resp := f.do(t, http.MethodGet, "/api/stock/1/at/ayer", f.user, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/stock/abc", f.user, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/stock/99", f.user, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/stock/1?stockLocationId=99", f.user, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestStock_Variaciones(t *testing.T) {
	f := newAPI(t, nil)
	resp := f.do(t, http.MethodGet, "/api/stock/1/variations", f.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var out []dto.MovementDTO
	decodeInto(t, resp, &out)
	require.Len(t, out, 2)
	assert.Equal(t, int64(7), out[0].QuantityDelta, "más reciente primero")
}

func TestStock_SinTenant_Retorna500MissingTenant(t *testing.T) {
	f := newAPI(t, nil)
	anon := bearer(t, pkgjwt.Identity{UserID: 7, Role: "USER"})

	resp := f.do(t, http.MethodGet, "/api/stock/1", anon, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	var out dto.ErrorResponse
	decodeInto(t, resp, &out)
	assert.Equal(t, "MISSING_TENANT", out.Code)
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos e inventarios
// ──────────────────────────────────────────────────────────────────────────────

func TestMovements_CrearYListar(t *testing.T) {
	f := newAPI(t, nil)

	resp := f.do(t, http.MethodPost, "/api/stock-movements", f.user, dto.CreateMovementsRequest{
		Movements: []dto.CreateMovementRequest{
			{ProductID: 1, StockLocationID: 20, QuantityDelta: 3, Reason: entity.ReasonPurchaseReceipt},
			{ProductID: 2, StockLocationID: 20, QuantityDelta: -1, Reason: entity.ReasonDonation},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var created []dto.MovementDTO
	decodeInto(t, resp, &created)
	require.Len(t, created, 2)

	resp = f.do(t, http.MethodGet, "/api/stock-movements?stockLocationId=20&reason=donation", f.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []dto.MovementDTO
	decodeInto(t, resp, &listed)
	require.Len(t, listed, 1)
	assert.Equal(t, int64(2), listed[0].ProductID)

	resp = f.do(t, http.MethodGet, "/api/stock/1?stockLocationId=20", f.user, nil)
	var st dto.StockResponse
	decodeInto(t, resp, &st)
	assert.Equal(t, int64(3), st.Stock)
}

func TestMovements_LoteInvalidoNoGuardaNada(t *testing.T) {
	f := newAPI(t, nil)
	before := f.store.MovementCount()

	resp := f.do(t, http.MethodPost, "/api/stock-movements", f.user, dto.CreateMovementsRequest{
		Movements: []dto.CreateMovementRequest{
			{ProductID: 1, StockLocationID: 10, QuantityDelta: 3},
			{ProductID: 1, StockLocationID: 10, QuantityDelta: 0},
		},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	var out dto.ErrorResponse
	decodeInto(t, resp, &out)
	assert.Equal(t, "VALIDATION", out.Code)
	assert.Equal(t, before, f.store.MovementCount())
}

func TestMovements_Bajas(t *testing.T) {
	f := newAPI(t, nil)
	f.store.AddMovement(2, 10, -2, entity.ReasonPersonalUse, ts("2024-03-13T09:00:00Z"))

	resp := f.do(t, http.MethodGet, "/api/stock-movements/disposals?from=2024-03-01&to=2024-03-31", f.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.DisposalSummaryDTO
	decodeInto(t, resp, &out)
	require.Len(t, out.Lines, 1)
	assert.Equal(t, int64(1600), out.TotalCents)

	resp = f.do(t, http.MethodGet, "/api/stock-movements/disposals?from=2024-03-31&to=2024-03-01", f.user, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestInventories_CrearYListar(t *testing.T) {
	f := newAPI(t, nil)

	resp := f.do(t, http.MethodPost, "/api/inventories", f.user, map[string]interface{}{
		"inventories": []map[string]interface{}{
			{"product_id": 2, "stock_location_id": 20, "quantity": 9, "captured_at": "2024-03-14T08:00:00Z"},
		},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodGet, "/api/inventories?productId=2&date=2024-03-14", f.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out []dto.SnapshotDTO
	decodeInto(t, resp, &out)
	require.Len(t, out, 1)
	assert.Equal(t, int64(9), out[0].Quantity)

	resp = f.do(t, http.MethodGet, "/api/stock/2/at/2024-03-15", f.user, nil)
	var st dto.StockResponse
	decodeInto(t, resp, &st)
	assert.Equal(t, int64(9), st.Stock)
}

// ──────────────────────────────────────────────────────────────────────────────
// Valorizaciones
// ──────────────────────────────────────────────────────────────────────────────

func TestValuations_SerieYCache(t *testing.T) {
	f := newAPI(t, nil)

	resp := f.do(t, http.MethodGet, "/api/stock-valuations?days=4&stockLocationId=all", f.user, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first dto.ValuationSeriesDTO
	decodeInto(t, resp, &first)
	require.Len(t, first.Points, 4)
	// 12/03..15/03: 116+7 = 123 unidades a 2,50
	for _, p := range first.Points {
		assert.Equal(t, int64(30750), p.TotalValueCents, p.ValuationDate)
		assert.False(t, p.FromCache)
		assert.Equal(t, dto.ScopeAll, p.Scope)
	}

	resp = f.do(t, http.MethodGet, "/api/stock-valuations?days=4&stockLocationId=10", f.user, nil)
	var second dto.ValuationSeriesDTO
	decodeInto(t, resp, &second)
	require.Len(t, second.Points, 4)
	for _, p := range second.Points {
		assert.True(t, p.FromCache, p.ValuationDate)
		assert.Equal(t, dto.ScopeLocation, p.Scope)
	}

	resp = f.do(t, http.MethodGet, "/api/stock-valuations", f.user, nil)
	var def dto.ValuationSeriesDTO
	decodeInto(t, resp, &def)
	assert.Len(t, def.Points, 30, "days por defecto")
}

func TestValuations_ParametrosInvalidos(t *testing.T) {
	f := newAPI(t, nil)

	for path, want := range map[string]int{
		"/api/stock-valuations?days=0":                  http.StatusBadRequest,
		"/api/stock-valuations?days=x":                  http.StatusBadRequest,
		"/api/stock-valuations?stockLocationId=abc":     http.StatusBadRequest,
		"/api/stock-valuations?stockLocationId=-3":      http.StatusBadRequest,
		"/api/stock-valuations?stockLocationId=99":      http.StatusNotFound,
		"/api/stock-valuations?stockLocationId=ALL":     http.StatusOK,
		"/api/stock-valuations?days=1&stockLocationId=": http.StatusOK,
	} {
		resp := f.do(t, http.MethodGet, path, f.user, nil)
		assert.Equal(t, want, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestValuations_PurgarCacheSoloAdmin(t *testing.T) {
	f := newAPI(t, nil)
	resp := f.do(t, http.MethodGet, "/api/stock-valuations?days=2", f.user, nil)
	resp.Body.Close()
	require.NotEmpty(t, f.store.CachedRows())

	resp = f.do(t, http.MethodDelete, "/api/stock-valuations/cache", f.user, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp.Body.Close()

	resp = f.do(t, http.MethodDelete, "/api/stock-valuations/cache", f.admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out dto.PurgeCacheResponse
	decodeInto(t, resp, &out)
	assert.Equal(t, int64(6), out.Deleted, "2 días x (all + 2 ubicaciones)")
	assert.Empty(t, f.store.CachedRows())
}

func TestValuations_InformePDF(t *testing.T) {
	f := newAPI(t, nil)
	resp := f.do(t, http.MethodGet, "/api/stock-valuations/report.pdf?days=3&stockLocationId=10", f.user, nil)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "valorizacion-acme-2024-03-15-3d.pdf")
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(body, []byte("%PDF")))
}

func TestValuations_Warmup(t *testing.T) {
	f := newAPI(t, nil)
	resp := f.do(t, http.MethodPost, "/api/stock-valuations/warmup", f.admin, nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	resp.Body.Close()

	enq := &fakeEnqueuer{}
	f = newAPI(t, enq)
	resp = f.do(t, http.MethodPost, "/api/stock-valuations/warmup?days=7", f.admin, nil)
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	resp.Body.Close()
	require.Len(t, enq.payloads, 1)
	assert.Equal(t, jobs.WarmupPayload{Days: 7, TenantCode: "acme"}, enq.payloads[0])
}
