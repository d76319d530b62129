package repositories

import (
	"context"
	"errors"

	"storeapi/internal/models"
)

// ErrNotFound is wrapped by every lookup that matches no row.
var ErrNotFound = errors.New("record not found")

// UserRepository defines the interface for user data access.
type UserRepository interface {
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

// StoreRepository defines the interface for store data access.
type StoreRepository interface {
	FindAll(ctx context.Context) ([]models.Store, error)
	FindByName(ctx context.Context, name string) (*models.Store, error)
	FindByID(ctx context.Context, id uint) (*models.Store, error)
	Save(ctx context.Context, store *models.Store) error
	Delete(ctx context.Context, store *models.Store) error
}

// ItemRepository defines the interface for item data access.
type ItemRepository interface {
	FindAll(ctx context.Context) ([]models.Item, error)
	FindByName(ctx context.Context, name string) (*models.Item, error)
	FindByID(ctx context.Context, id uint) (*models.Item, error)
	FindByStoreID(ctx context.Context, storeID uint) ([]models.Item, error)
	CountByStoreID(ctx context.Context, storeID uint) (int64, error)
	Save(ctx context.Context, item *models.Item) error
	Delete(ctx context.Context, item *models.Item) error
}

// Repositories bundles the repositories bound to a single unit of work.
type Repositories struct {
	Users  UserRepository
	Stores StoreRepository
	Items  ItemRepository
}

// TxManager runs fn inside one transaction. The transaction commits when fn
// returns nil and rolls back otherwise.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(r Repositories) error) error
}
