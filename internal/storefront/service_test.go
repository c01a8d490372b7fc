package storefront_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cine-storefront/internal/catalog"
	"cine-storefront/internal/database/testdb"
	"cine-storefront/internal/inventory"
	"cine-storefront/internal/logger"
	"cine-storefront/internal/models"
	"cine-storefront/internal/sellers"
	"cine-storefront/internal/storefront"
)

func setupService(t *testing.T) (*storefront.Service, *sellers.Service, *inventory.Service) {
	t.Helper()
	db := testdb.New(t)
	nop := logger.NewNopLogger()
	sellerSvc := sellers.NewService(&sellers.DB{Bun: db}, nop)
	inv := inventory.NewService(&inventory.DB{Bun: db}, nil, nop, nil, 100, "cinejuventude@email.com")
	return storefront.NewService(catalog.Default(), sellerSvc, inv, true), sellerSvc, inv
}

func TestView(t *testing.T) {
	svc, sellerSvc, inv := setupService(t)
	ctx := context.Background()

	ana, err := sellerSvc.Create(ctx, "Ana")
	require.NoError(t, err)
	bruno, err := sellerSvc.Create(ctx, "Bruno")
	require.NoError(t, err)
	_, err = sellerSvc.SetActive(ctx, bruno.ID, false)
	require.NoError(t, err)
	_, err = inv.Increment(ctx, 3)
	require.NoError(t, err)

	view, err := svc.View(ctx)
	require.NoError(t, err)

	require.Len(t, view.Products, 1)
	assert.Equal(t, "combo_individual", view.Products[0].ID)
	require.Len(t, view.Sellers, 1)
	assert.Equal(t, ana.ID, view.Sellers[0].ID)
	assert.Equal(t, 3, view.Inventory.Sold)
	assert.Equal(t, 97, view.Inventory.Remaining)
	assert.Equal(t, "cinejuventude@email.com", view.PixKey)
	assert.True(t, view.RequireSeller)
}

func TestView_NoSellersIsEmptyList(t *testing.T) {
	svc, _, _ := setupService(t)

	view, err := svc.View(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, view.Sellers)
	assert.Empty(t, view.Sellers)
}

func TestPixPayload(t *testing.T) {
	svc, _, _ := setupService(t)

	payload, err := svc.PixPayload("combo_individual")
	require.NoError(t, err)
	assert.Contains(t, payload, "BR.GOV.BCB.PIX")

	_, err = svc.PixPayload("combo_familia")
	assert.ErrorIs(t, err, catalog.ErrProductNotFound)
}

func TestUpdateSettings(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	total := 150
	pix := "  nova@chave.com "
	settings, err := svc.UpdateSettings(ctx, storefront.SettingsUpdate{TicketsTotal: &total, PixKey: &pix})
	require.NoError(t, err)
	assert.Equal(t, 150, settings.Inventory.Total)
	assert.Equal(t, "nova@chave.com", settings.PixKey)

	settings, err = svc.UpdateSettings(ctx, storefront.SettingsUpdate{PixKey: &pix})
	require.NoError(t, err)
	assert.Equal(t, 150, settings.Inventory.Total)
}

func TestUpdateSettings_Validation(t *testing.T) {
	svc, _, _ := setupService(t)
	ctx := context.Background()

	zero := 0
	blank := " "
	for name, upd := range map[string]storefront.SettingsUpdate{
		"empty":      {},
		"zero total": {TicketsTotal: &zero},
		"blank pix":  {PixKey: &blank},
	} {
		_, err := svc.UpdateSettings(ctx, upd)
		var ve *models.ValidationError
		assert.True(t, errors.As(err, &ve), name)
	}
}
