package services

import (
	"context"
	"testing"

	"rewear/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const buyer = "ann@example.com"

func TestCartService_AddAndTotals(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewCartService(store.Carts(), store.Products())
	shirt := addProduct(t, store, "Linen Shirt", 10)

	cart, err := svc.Add(ctx, buyer, shirt.ID, 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "20.00", cart.Items[0].Subtotal)
	assert.Equal(t, "20.00", cart.Total)
	assert.Equal(t, "Linen Shirt", cart.Items[0].Name)

	_, err = svc.Add(ctx, buyer, shirt.ID, 1)
	assert.ErrorIs(t, err, ErrCartItemExists)

	total, err := svc.Total(ctx, buyer)
	require.NoError(t, err)
	assert.Equal(t, "20.00", total)
}

func TestCartService_AddRejectsUnapproved(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewCartService(store.Carts(), store.Products())
	p := addProduct(t, store, "Wool Coat", 90)
	require.NoError(t, store.Products().SetStatus(ctx, models.ProductApproved, models.ProductPending, p.ID))

	_, err := svc.Add(ctx, buyer, p.ID, 1)
	assert.ErrorIs(t, err, ErrProductUnavailable)

	_, err = svc.Add(ctx, buyer, "missing", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_SetQuantityBelowOneRemoves(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewCartService(store.Carts(), store.Products())
	a := addProduct(t, store, "Linen Shirt", 10)
	b := addProduct(t, store, "Wool Coat", 90)

	_, err := svc.Add(ctx, buyer, a.ID, 1)
	require.NoError(t, err)
	_, err = svc.Add(ctx, buyer, b.ID, 1)
	require.NoError(t, err)

	viaQuantity, err := svc.SetQuantity(ctx, buyer, a.ID, 0)
	require.NoError(t, err)

	_, err = svc.Add(ctx, buyer, a.ID, 1)
	require.NoError(t, err)
	viaRemove, err := svc.Remove(ctx, buyer, a.ID)
	require.NoError(t, err)

	assert.Equal(t, viaRemove, viaQuantity)
	require.Len(t, viaQuantity.Items, 1)
	assert.Equal(t, b.ID, viaQuantity.Items[0].ProductID)

	cart, err := svc.SetQuantity(ctx, buyer, b.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "270.00", cart.Total)

	_, err = svc.SetQuantity(ctx, buyer, "missing", 2)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCartService_MissingProductIsUnavailable(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	svc := NewCartService(store.Carts(), store.Products())
	p := addProduct(t, store, "Linen Shirt", 10)

	_, err := svc.Add(ctx, buyer, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, store.Products().Delete(ctx, p.ID))

	cart, err := svc.Get(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, "unavailable", cart.Items[0].Status)
	assert.Equal(t, "0.00", cart.Total)
}
