package services

import (
	"context"
	"errors"
	"unicode/utf8"

	"storeapi/internal/models"
	"storeapi/internal/repositories"

	"gorm.io/gorm"
)

// MaxNameLength bounds item, store and user names.
const MaxNameLength = 80

// ItemInput carries the mandatory fields of an item write.
type ItemInput struct {
	Price   float64
	StoreID uint
}

// ItemService handles business logic related to items.
type ItemService struct {
	tx     repositories.TxManager
	events events
}

// NewItemService creates a new ItemService.
func NewItemService(tx repositories.TxManager, publisher EventPublisher, exchange string) *ItemService {
	return &ItemService{
		tx:     tx,
		events: events{publisher: publisher, exchange: exchange},
	}
}

// Get returns the item with the given name.
func (s *ItemService) Get(ctx context.Context, name string) (*models.Item, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	var item *models.Item
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		found, err := r.Items.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return newError(ErrNotFound, nil, "Item not found")
			}
			return newError(ErrPersistence, err, "An error occurred while reading the item.")
		}
		item = found
		return nil
	})
	if err != nil {
		return nil, txError(err, "An error occurred while reading the item.")
	}
	return item, nil
}

// List returns all items.
func (s *ItemService) List(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		var err error
		items, err = r.Items.FindAll(ctx)
		return err
	})
	if err != nil {
		return nil, newError(ErrPersistence, err, "An error occurred while listing the items.")
	}
	return items, nil
}

// Create persists a new item unless one with the same name exists.
func (s *ItemService) Create(ctx context.Context, name string, in ItemInput) (*models.Item, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	item := &models.Item{Name: name, Price: in.Price, StoreID: in.StoreID}
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		_, err := r.Items.FindByName(ctx, name)
		switch {
		case err == nil:
			return newError(ErrConflict, nil, "An item with name '%s' already exists.", name)
		case !errors.Is(err, repositories.ErrNotFound):
			return newError(ErrPersistence, err, "An error occurred when inserting the item.")
		}
		if err := requireStore(ctx, r, in.StoreID); err != nil {
			return err
		}
		return saveItem(ctx, r, item, "An error occurred when inserting the item.")
	})
	if err != nil {
		return nil, txError(err, "An error occurred when inserting the item.")
	}

	s.events.publish(EventItemCreated, itemEvent(item))
	return item, nil
}

// Upsert creates the item if it does not exist, otherwise updates its price
// and store in place. created reports which of the two happened.
func (s *ItemService) Upsert(ctx context.Context, name string, in ItemInput) (item *models.Item, created bool, err error) {
	if err := validateName(name); err != nil {
		return nil, false, err
	}
	err = s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		found, err := r.Items.FindByName(ctx, name)
		switch {
		case errors.Is(err, repositories.ErrNotFound):
			item = &models.Item{Name: name, Price: in.Price, StoreID: in.StoreID}
			created = true
		case err != nil:
			return newError(ErrPersistence, err, "An error occurred when updating the item.")
		default:
			item = found
			item.Price = in.Price
			item.StoreID = in.StoreID
		}
		if err := requireStore(ctx, r, in.StoreID); err != nil {
			return err
		}
		return saveItem(ctx, r, item, "An error occurred when updating the item.")
	})
	if err != nil {
		return nil, false, txError(err, "An error occurred when updating the item.")
	}

	if created {
		s.events.publish(EventItemCreated, itemEvent(item))
	} else {
		s.events.publish(EventItemUpdated, itemEvent(item))
	}
	return item, created, nil
}

// Delete removes the item if it exists. Deleting a missing item succeeds.
func (s *ItemService) Delete(ctx context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	deleted := false
	err := s.tx.WithinTx(ctx, func(r repositories.Repositories) error {
		item, err := r.Items.FindByName(ctx, name)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil
			}
			return newError(ErrPersistence, err, "An error occurred while deleting the item.")
		}
		if err := r.Items.Delete(ctx, item); err != nil {
			return newError(ErrPersistence, err, "An error occurred while deleting the item.")
		}
		deleted = true
		return nil
	})
	if err != nil {
		return txError(err, "An error occurred while deleting the item.")
	}

	if deleted {
		s.events.publish(EventItemDeleted, map[string]any{"name": name})
	}
	return nil
}

func requireStore(ctx context.Context, r repositories.Repositories, storeID uint) error {
	_, err := r.Stores.FindByID(ctx, storeID)
	if errors.Is(err, repositories.ErrNotFound) {
		return newError(ErrValidation, nil, "Store with id %d does not exist.", storeID)
	}
	if err != nil {
		return newError(ErrPersistence, err, "An error occurred while reading the store.")
	}
	return nil
}

func saveItem(ctx context.Context, r repositories.Repositories, item *models.Item, failure string) error {
	err := r.Items.Save(ctx, item)
	switch {
	case err == nil:
		return nil
	case isDuplicate(err):
		return newError(ErrConflict, err, "An item with name '%s' already exists.", item.Name)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return newError(ErrValidation, err, "Store with id %d does not exist.", item.StoreID)
	default:
		return newError(ErrPersistence, err, "%s", failure)
	}
}

func itemEvent(item *models.Item) map[string]any {
	return map[string]any{"name": item.Name, "price": item.Price, "store_id": item.StoreID}
}

func isDuplicate(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}

func validateName(name string) error {
	if name == "" || utf8.RuneCountInString(name) > MaxNameLength {
		return newError(ErrValidation, nil, "Name must be between 1 and %d characters.", MaxNameLength)
	}
	return nil
}
