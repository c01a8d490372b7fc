package storefront_api_test

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-storefront/internal/catalog"
	"cine-storefront/internal/database/testdb"
	"cine-storefront/internal/inventory"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	"cine-storefront/internal/sellers"
	"cine-storefront/internal/sse"
	"cine-storefront/internal/storefront"
	"cine-storefront/internal/storefront/storefront_api"
	qr "cine-storefront/internal/tickets/qr_generator"
)

// emitterNotifier stands in for the Redis broadcaster on a single instance.
type emitterNotifier struct {
	emitter *sse.InventoryEmitter
}

func (n emitterNotifier) Publish(ctx context.Context, snap models.InventorySnapshot) error {
	n.emitter.Emit(snap)
	return nil
}

func setupRouter(t *testing.T) (http.Handler, *inventory.Service, *sse.InventoryEmitter) {
	t.Helper()
	db := testdb.New(t)
	nop := logger.NewNopLogger()
	emitter := sse.NewInventoryEmitter()

	inv := inventory.NewService(&inventory.DB{Bun: db}, emitterNotifier{emitter}, nop, nil, 100, "cinejuventude@email.com")
	svc := storefront.NewService(catalog.Default(), sellers.NewService(&sellers.DB{Bun: db}, nop), inv, false)
	h := storefront_api.NewHandler(svc, emitter, qr.NewGenerator("CINE-JUVENTUDE", 128), nop)

	r := chi.NewRouter()
	h.RegisterRoutes(r)
	r.Put("/api/admin/settings", h.UpdateSettings)
	return r, inv, emitter
}

func TestGetStorefront(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/storefront/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data storefront.View `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "10.00", resp.Data.Products[0].Price.StringFixed(2))
	assert.Equal(t, 100, resp.Data.Inventory.Total)
}

func TestGetInventory(t *testing.T) {
	router, inv, _ := setupRouter(t)
	_, err := inv.Increment(context.Background(), 120)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/storefront/inventory", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data models.InventorySnapshot `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 120, resp.Data.Sold)
	assert.Equal(t, 0, resp.Data.Remaining)
	assert.Equal(t, 100, resp.Data.Percent)
}

func TestProductPix(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/storefront/products/combo_individual/pix.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("\x89PNG")))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/storefront/products/nope/pix.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateSettings(t *testing.T) {
	router, _, _ := setupRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/settings", strings.NewReader(`{"tickets_total":80}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"tickets_total":80`)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/admin/settings", strings.NewReader(`{"tickets_total":-1}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), `"field":"tickets_total"`)
}

func TestStreamInventory_PushesIncrements(t *testing.T) {
	router, inv, emitter := setupRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/storefront/inventory/stream")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	reader := bufio.NewReader(resp.Body)
	readData := func() string {
		for {
			line, err := reader.ReadString('\n')
			require.NoError(t, err)
			if strings.HasPrefix(line, "data: ") {
				return strings.TrimSpace(strings.TrimPrefix(line, "data: "))
			}
		}
	}

	assert.Contains(t, readData(), `"tickets_sold":0`)

	require.Eventually(t, func() bool { return emitter.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	_, err = inv.Increment(context.Background(), 2)
	require.NoError(t, err)
	assert.Contains(t, readData(), `"tickets_sold":2`)
}
