package repositories_test

import (
	"context"
	"errors"
	"testing"

	"storeapi/internal/database"
	"storeapi/internal/models"
	"storeapi/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupGORM(t *testing.T) repositories.TxManager {
	db, err := database.Open("sqlite:///file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	return repositories.NewGORMTxManager(db)
}

func setupMemory(t *testing.T) repositories.TxManager {
	return repositories.NewMemoryTxManager()
}

// forEachBackend runs the same test against every TxManager implementation.
func forEachBackend(t *testing.T, fn func(t *testing.T, tm repositories.TxManager)) {
	backends := map[string]func(*testing.T) repositories.TxManager{
		"gorm":   setupGORM,
		"memory": setupMemory,
	}
	for name, setup := range backends {
		t.Run(name, func(t *testing.T) {
			fn(t, setup(t))
		})
	}
}

func TestSaveInsertsThenUpdates(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tm repositories.TxManager) {
		ctx := context.Background()
		err := tm.WithinTx(ctx, func(r repositories.Repositories) error {
			store := &models.Store{Name: "S"}
			require.NoError(t, r.Stores.Save(ctx, store))
			require.NotZero(t, store.ID)

			item := &models.Item{Name: "A", Price: 9.999, StoreID: store.ID}
			require.NoError(t, r.Items.Save(ctx, item))
			firstID := item.ID
			require.NotZero(t, firstID)

			item.Price = 1.5
			require.NoError(t, r.Items.Save(ctx, item))
			assert.Equal(t, firstID, item.ID)

			found, err := r.Items.FindByName(ctx, "A")
			require.NoError(t, err)
			assert.Equal(t, 1.5, found.Price)
			assert.Equal(t, store.ID, found.StoreID)

			all, err := r.Items.FindAll(ctx)
			require.NoError(t, err)
			assert.Len(t, all, 1)
			return nil
		})
		require.NoError(t, err)
	})
}

func TestPriceIsRoundedOnSave(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tm repositories.TxManager) {
		ctx := context.Background()
		require.NoError(t, tm.WithinTx(ctx, func(r repositories.Repositories) error {
			store := &models.Store{Name: "S"}
			require.NoError(t, r.Stores.Save(ctx, store))
			require.NoError(t, r.Items.Save(ctx, &models.Item{Name: "A", Price: 2.346, StoreID: store.ID}))

			found, err := r.Items.FindByName(ctx, "A")
			require.NoError(t, err)
			assert.Equal(t, 2.35, found.Price)
			return nil
		}))
	})
}

func TestLookupMissReturnsErrNotFound(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tm repositories.TxManager) {
		ctx := context.Background()
		require.NoError(t, tm.WithinTx(ctx, func(r repositories.Repositories) error {
			_, err := r.Items.FindByName(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = r.Items.FindByID(ctx, 42)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = r.Stores.FindByName(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = r.Stores.FindByID(ctx, 42)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = r.Users.FindByUsername(ctx, "missing")
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			_, err = r.Users.FindByID(ctx, 42)
			assert.ErrorIs(t, err, repositories.ErrNotFound)
			return nil
		}))
	})
}

func TestUniqueNamesAreEnforced(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tm repositories.TxManager) {
		ctx := context.Background()
		require.NoError(t, tm.WithinTx(ctx, func(r repositories.Repositories) error {
			require.NoError(t, r.Users.Save(ctx, &models.User{Username: "bob", Password: "hash"}))
			return r.Stores.Save(ctx, &models.Store{Name: "S"})
		}))

		err := tm.WithinTx(ctx, func(r repositories.Repositories) error {
			return r.Users.Save(ctx, &models.User{Username: "bob", Password: "hash"})
		})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

		err = tm.WithinTx(ctx, func(r repositories.Repositories) error {
			return r.Stores.Save(ctx, &models.Store{Name: "S"})
		})
		assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
	})
}

func TestItemsReferenceExistingStore(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tm repositories.TxManager) {
		ctx := context.Background()
		err := tm.WithinTx(ctx, func(r repositories.Repositories) error {
			return r.Items.Save(ctx, &models.Item{Name: "orphan", Price: 1, StoreID: 99})
		})
		assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)
	})
}

func TestStoreWithItemsCannotBeDeleted(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tm repositories.TxManager) {
		ctx := context.Background()
		var store models.Store
		require.NoError(t, tm.WithinTx(ctx, func(r repositories.Repositories) error {
			store = models.Store{Name: "S"}
			require.NoError(t, r.Stores.Save(ctx, &store))
			return r.Items.Save(ctx, &models.Item{Name: "X", Price: 1.5, StoreID: store.ID})
		}))

		err := tm.WithinTx(ctx, func(r repositories.Repositories) error {
			return r.Stores.Delete(ctx, &store)
		})
		assert.ErrorIs(t, err, gorm.ErrForeignKeyViolated)

		require.NoError(t, tm.WithinTx(ctx, func(r repositories.Repositories) error {
			items, err := r.Items.FindByStoreID(ctx, store.ID)
			require.NoError(t, err)
			require.Len(t, items, 1)
			count, err := r.Items.CountByStoreID(ctx, store.ID)
			require.NoError(t, err)
			assert.EqualValues(t, 1, count)

			require.NoError(t, r.Items.Delete(ctx, &items[0]))
			return r.Stores.Delete(ctx, &store)
		}))

		err = tm.WithinTx(ctx, func(r repositories.Repositories) error {
			_, err := r.Stores.FindByName(ctx, "S")
			return err
		})
		assert.ErrorIs(t, err, repositories.ErrNotFound)
	})
}

func TestFailedTransactionRollsBack(t *testing.T) {
	forEachBackend(t, func(t *testing.T, tm repositories.TxManager) {
		ctx := context.Background()
		boom := errors.New("boom")
		err := tm.WithinTx(ctx, func(r repositories.Repositories) error {
			require.NoError(t, r.Stores.Save(ctx, &models.Store{Name: "S"}))
			return boom
		})
		assert.ErrorIs(t, err, boom)

		require.NoError(t, tm.WithinTx(ctx, func(r repositories.Repositories) error {
			stores, err := r.Stores.FindAll(ctx)
			require.NoError(t, err)
			assert.Empty(t, stores)
			return nil
		}))
	})
}
