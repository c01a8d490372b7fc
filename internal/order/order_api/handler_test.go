package order_api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"cine-storefront/internal/catalog"
	"cine-storefront/internal/database/testdb"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	"cine-storefront/internal/order"
	"cine-storefront/internal/order/db"
	"cine-storefront/internal/order/order_api"
	"cine-storefront/internal/utils"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d}

type stubReceipts struct{}

func (stubReceipts) Upload(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	return "http://cdn.test/receipts/" + name, nil
}

type MockCounter struct{ mock.Mock }

func (m *MockCounter) Increment(ctx context.Context, n int) (models.InventorySnapshot, error) {
	args := m.Called(n)
	return models.InventorySnapshot{}, args.Error(0)
}

type noSellers struct{}

func (noSellers) ResolveActive(ctx context.Context, id string) (*models.Seller, error) {
	return nil, models.ErrSellerNotFound
}

type noEvents struct{}

func (noEvents) OrderCreated(context.Context, *models.Order)   {}
func (noEvents) OrderCancelled(context.Context, *models.Order) {}

func setupRouter(t *testing.T) (http.Handler, *MockCounter, *db.DB) {
	t.Helper()
	store := &db.DB{Bun: testdb.New(t)}
	counter := new(MockCounter)
	counter.On("Increment", mock.Anything).Return(nil)

	svc := order.NewOrderService(store, stubReceipts{}, counter, noSellers{}, noEvents{}, catalog.Default(), logger.NewNopLogger(), nil, false)
	h := order_api.NewHandler(svc, logger.NewNopLogger(), 1<<20, "http://cine.test/")

	r := chi.NewRouter()
	r.Post("/api/checkout", h.Checkout)
	r.Get("/api/admin/orders", h.ListOrders)
	r.Get("/api/admin/orders/{orderId}", h.GetOrder)
	r.Post("/api/admin/orders/{orderId}/cancel", h.CancelOrder)
	r.Get("/api/admin/orders/{orderId}/receipt", h.Receipt)
	return r, counter, store
}

func checkoutForm(t *testing.T, fields map[string]string, receipt []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if receipt != nil {
		fw, err := mw.CreateFormFile("receipt", "comprovante.png")
		require.NoError(t, err)
		_, err = fw.Write(receipt)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func doCheckout(t *testing.T, r http.Handler, fields map[string]string, receipt []byte) *httptest.ResponseRecorder {
	body, ct := checkoutForm(t, fields, receipt)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", body)
	req.Header.Set("Content-Type", ct)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

var mariaFields = map[string]string{
	"customer_name":     "Maria Silva",
	"customer_whatsapp": "63999998888",
	"product_id":        "combo_individual",
}

func decodeCheckout(t *testing.T, rec *httptest.ResponseRecorder) models.CheckoutResponse {
	t.Helper()
	var envelope struct {
		Success bool                    `json:"success"`
		Data    models.CheckoutResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)
	return envelope.Data
}

func TestCheckout_Success(t *testing.T) {
	r, counter, store := setupRouter(t)

	rec := doCheckout(t, r, mariaFields, pngBytes)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeCheckout(t, rec)
	assert.Regexp(t, `^CJ-`, resp.OrderCode)
	assert.Equal(t, "http://cine.test/ticket/"+resp.OrderID, resp.TicketURL)

	stored, err := store.GetOrderByID(context.Background(), resp.OrderID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPaid, stored.Status)
	assert.Contains(t, stored.ReceiptURL, "http://cdn.test/receipts/")
	counter.AssertCalled(t, "Increment", 1)
}

func TestCheckout_MissingReceipt(t *testing.T) {
	r, counter, _ := setupRouter(t)

	rec := doCheckout(t, r, mariaFields, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var body utils.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "receipt", body.Field)
	counter.AssertNotCalled(t, "Increment", mock.Anything)
}

func TestCheckout_BlankName(t *testing.T) {
	r, _, _ := setupRouter(t)
	fields := map[string]string{"customer_name": " ", "customer_whatsapp": "63999998888", "product_id": "combo_individual"}

	rec := doCheckout(t, r, fields, pngBytes)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "customer_name")
}

func TestCheckout_NotMultipart(t *testing.T) {
	r, _, _ := setupRouter(t)
	req := httptest.NewRequest(http.MethodPost, "/api/checkout", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminOrderFlow(t *testing.T) {
	r, _, _ := setupRouter(t)
	created := decodeCheckout(t, doCheckout(t, r, mariaFields, pngBytes))

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders?q=maria&status=paid", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.OrderCode)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders/"+created.OrderID+"/receipt", nil))
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "http://cdn.test/receipts/")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+created.OrderID+"/cancel", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"cancelled"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders?status=bogus", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetOrder_NotFound(t *testing.T) {
	r, _, _ := setupRouter(t)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/orders/"+uuid.NewString(), nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelOrder_UsedConflict(t *testing.T) {
	r, _, store := setupRouter(t)
	created := decodeCheckout(t, doCheckout(t, r, mariaFields, pngBytes))

	ok, err := store.MarkUsed(context.Background(), created.OrderCode, testNow())
	require.NoError(t, err)
	require.True(t, ok)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/admin/orders/"+created.OrderID+"/cancel", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func testNow() time.Time { return time.Now().UTC() }
