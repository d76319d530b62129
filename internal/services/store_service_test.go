package services_test

import (
	"context"
	"testing"

	"storeapi/internal/models"
	"storeapi/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreService_CreateGetList(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	f.expect(services.EventStoreCreated, 2)
	f.expect(services.EventItemCreated, 2)

	created, err := f.stores.Create(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, models.StoreJSON{Name: "S", Items: []models.ItemJSON{}}, *created)

	// Test duplicate store
	_, err = f.stores.Create(ctx, "S")
	assert.ErrorIs(t, err, services.ErrConflict)
	assert.EqualError(t, err, "A store with name 'S' already exists.")

	_, err = f.stores.Create(ctx, "T")
	require.NoError(t, err)
	_, err = f.items.Create(ctx, "X", services.ItemInput{Price: 1.5, StoreID: 1})
	require.NoError(t, err)
	_, err = f.items.Create(ctx, "Y", services.ItemInput{Price: 2, StoreID: 1})
	require.NoError(t, err)

	got, err := f.stores.Get(ctx, "S")
	require.NoError(t, err)
	assert.Equal(t, []models.ItemJSON{{Name: "X", Price: 1.5}, {Name: "Y", Price: 2}}, got.Items)

	all, err := f.stores.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Len(t, all[0].Items, 2)
	assert.Empty(t, all[1].Items)

	_, err = f.stores.Get(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestStoreService_DeleteRejectsStoreWithItems(t *testing.T) {
	f := newItemFixture(t)
	ctx := context.Background()
	f.expect(services.EventStoreCreated, 1)
	f.expect(services.EventItemCreated, 1)
	f.expect(services.EventItemDeleted, 1)
	f.expect(services.EventStoreDeleted, 1)

	_, err := f.stores.Create(ctx, "S")
	require.NoError(t, err)
	_, err = f.items.Create(ctx, "X", services.ItemInput{Price: 1.5, StoreID: 1})
	require.NoError(t, err)

	err = f.stores.Delete(ctx, "S")
	assert.ErrorIs(t, err, services.ErrConflict)

	got, err := f.stores.Get(ctx, "S")
	require.NoError(t, err)
	assert.Len(t, got.Items, 1)

	require.NoError(t, f.items.Delete(ctx, "X"))
	assert.NoError(t, f.stores.Delete(ctx, "S"))
	// Deleting a missing store succeeds without an event.
	assert.NoError(t, f.stores.Delete(ctx, "S"))

	_, err = f.stores.Get(ctx, "S")
	assert.ErrorIs(t, err, services.ErrNotFound)
}
