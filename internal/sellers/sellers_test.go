package sellers_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"cine-storefront/internal/database/testdb"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	"cine-storefront/internal/sellers"
	"cine-storefront/internal/utils"
)

func setupService(t *testing.T) (*sellers.Service, *bun.DB) {
	t.Helper()
	bunDB := testdb.New(t)
	return sellers.NewService(&sellers.DB{Bun: bunDB}, logger.NewNopLogger()), bunDB
}

func insertOrder(t *testing.T, bunDB *bun.DB, sellerID string, status models.OrderStatus) {
	t.Helper()
	order := &models.Order{
		ID:               utils.GenerateID(),
		OrderCode:        utils.GenerateOrderCode(time.Now()),
		CustomerName:     "Cliente",
		CustomerWhatsApp: "63999998888",
		SellerID:         &sellerID,
		ProductType:      "combo_individual",
		ProductName:      "Combo Individual",
		Price:            decimal.NewFromInt(10),
		Tickets:          1,
		Status:           status,
		CreatedAt:        time.Now().UTC(),
	}
	_, err := bunDB.NewInsert().Model(order).Exec(context.Background())
	require.NoError(t, err)
}

func TestCreateAndList(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	ana, err := svc.Create(ctx, "  Ana ")
	require.NoError(t, err)
	assert.Equal(t, "Ana", ana.Name)
	assert.True(t, ana.Active)

	bruno, err := svc.Create(ctx, "Bruno")
	require.NoError(t, err)

	_, err = svc.SetActive(ctx, bruno.ID, false)
	require.NoError(t, err)

	active, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Ana", active[0].Name)

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCreate_RequiresName(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.Create(context.Background(), "   ")
	assert.True(t, models.IsValidation(err))
}

func TestSetActive_Unknown(t *testing.T) {
	svc, _ := setupService(t)
	_, err := svc.SetActive(context.Background(), "missing", true)
	assert.ErrorIs(t, err, models.ErrSellerNotFound)
}

func TestResolveActive(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, "Carla")
	require.NoError(t, err)

	got, err := svc.ResolveActive(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)

	_, err = svc.SetActive(ctx, s.ID, false)
	require.NoError(t, err)
	_, err = svc.ResolveActive(ctx, s.ID)
	assert.ErrorIs(t, err, models.ErrSellerNotFound)

	_, err = svc.ResolveActive(ctx, "nope")
	assert.ErrorIs(t, err, models.ErrSellerNotFound)
}

func TestRefreshTotalSales_IgnoresCancelled(t *testing.T) {
	svc, bunDB := setupService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, "Diego")
	require.NoError(t, err)

	insertOrder(t, bunDB, s.ID, models.StatusPaid)
	insertOrder(t, bunDB, s.ID, models.StatusUsed)
	insertOrder(t, bunDB, s.ID, models.StatusCancelled)

	total, err := svc.RefreshTotalSales(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, total)

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalSales)
}

func TestHandleOrderEvent(t *testing.T) {
	svc, bunDB := setupService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, "Eva")
	require.NoError(t, err)
	insertOrder(t, bunDB, s.ID, models.StatusPaid)

	event := models.OrderEvent{Type: "order.created", SellerID: &s.ID}
	require.NoError(t, svc.HandleOrderEvent(ctx, "storefront.order.created", event))

	got, err := svc.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.TotalSales)

	unknown := "missing"
	assert.NoError(t, svc.HandleOrderEvent(ctx, "storefront.order.created", models.OrderEvent{SellerID: &unknown}))
	assert.NoError(t, svc.HandleOrderEvent(ctx, "storefront.order.created", models.OrderEvent{}))
}

func TestStoreFailuresAreNotReportedAsNotFound(t *testing.T) {
	svc, bunDB := setupService(t)
	ctx := context.Background()

	s, err := svc.Create(ctx, "Fabio")
	require.NoError(t, err)
	require.NoError(t, bunDB.Close())

	_, err = svc.SetActive(ctx, s.ID, false)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrSellerNotFound)

	_, err = svc.RefreshTotalSales(ctx, s.ID)
	require.Error(t, err)
	assert.NotErrorIs(t, err, models.ErrSellerNotFound)

	err = svc.HandleOrderEvent(ctx, "storefront.order.created", models.OrderEvent{Type: "order.created", SellerID: &s.ID})
	assert.Error(t, err)
}
