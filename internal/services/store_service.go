package services

import (
	"context"
	"errors"

	"storeapi/internal/models"
	"storeapi/internal/repositories"

	"gorm.io/gorm"
)

// StoreService handles business logic related to stores.
type StoreService struct {
	tx     repositories.TxManager
	events events
}

// NewStoreService creates a new StoreService.
func NewStoreService(tx repositories.TxManager, publisher EventPublisher, exchange string) *StoreService {
	return &StoreService{
		tx:     tx,
		events: events{publisher: publisher, exchange: exchange},
	}
}

// serialize fetches the store's items explicitly and nests them.
func serialize(ctx context.Context, r repositories.Repositories, store *models.Store) (models.StoreJSON, error) {
	items, err := r.Items.FindByStoreID(ctx, store.ID)
	if err != nil {
		return models.StoreJSON{}, err
	}
	return store.JSON(items), nil
}

// Get returns the serialized store with its items.
func (s *StoreService) Get(ctx context.Context, name string) (*models.StoreJSON, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var out models.StoreJSON
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		store, err := r.Stores.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(ErrNotFound, nil, "Store not found")
			}
			return newError(ErrPersistence, err, "An error occurred while reading the store.")
		}
		out, err = serialize(ctx, r, store)
		if err != nil {
			return newError(ErrPersistence, err, "An error occurred while reading the store.")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, "An error occurred while reading the store.")
	}
	return &out, nil
}

// List returns every store with its items.
func (s *StoreService) List(ctx context.Context) ([]models.StoreJSON, error) {
	out := []models.StoreJSON{}
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		stores, err := r.Stores.FindAll(ctx)
		if err != nil {
			return err
		}
		for i := range stores {
			sj, err := serialize(ctx, r, &stores[i])
			if err != nil {
				return err
			}
			out = append(out, sj)
		}
		return nil
	})
	if err != nil {
		return nil, newError(ErrPersistence, err, "An error occurred while listing the stores.")
	}
	return out, nil
}

// Create persists a new store unless one with the same name exists.
func (s *StoreService) Create(ctx context.Context, name string) (*models.StoreJSON, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	store := &models.Store{Name: name}
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		_, err := r.Stores.FindByName(ctx, name)
		switch {
		case err == nil:
			return newError(ErrConflict, nil, "A store with name '%s' already exists.", name)
		case !errors.Is(err, repositories.ErrNotFound):
			return newError(ErrPersistence, err, "An error occurred while creating the store.")
		}
		if err := r.Stores.Save(ctx, store); err != nil {
			if isDuplicate(err) {
				return newError(ErrConflict, err, "A store with name '%s' already exists.", name)
			}
			return newError(ErrPersistence, err, "An error occurred while creating the store.")
		}
		return nil
	})
	if err != nil {
		return nil, txError(err, "An error occurred while creating the store.")
	}

	out := store.JSON(nil)
	s.events.publish(EventStoreCreated, out)
	return &out, nil
}

// Delete removes the store if it exists. A store that still owns items is
// not deleted and a conflict is returned instead. Deleting a missing store succeeds.
func (s *StoreService) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	deleted := false
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		store, err := r.Stores.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return newError(ErrPersistence, err, "An error occurred while deleting the store.")
		}
		count, err := r.Items.CountByStoreID(ctx, store.ID)
		if err != nil {
			return newError(ErrPersistence, err, "An error occurred while deleting the store.")
		}
		if count > 0 {
			return newError(ErrConflict, nil, "Store '%s' still has %d item(s) and cannot be deleted.", name, count)
		}
		if err := r.Stores.Delete(ctx, store); err != nil {
			if errors.Is(err, gorm.ErrForeignKeyViolated) {
				return newError(ErrConflict, err, "Store '%s' still has items and cannot be deleted.", name)
			}
			return newError(ErrPersistence, err, "An error occurred while deleting the store.")
		}
		deleted = true
		return nil
	})
	if err != nil {
		return txError(err, "An error occurred while deleting the store.")
	}

	if deleted {
		s.events.publish(EventStoreDeleted, map[string]any{"name": name})
	}
	return nil
}
