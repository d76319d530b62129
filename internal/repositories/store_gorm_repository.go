package repositories

import (
	"context"
	"fmt"

	"storeapi/internal/models"

	"gorm.io/gorm"
)

// GORMStoreRepository is a GORM implementation of StoreRepository.
type GORMStoreRepository struct {
	db *gorm.DB
}

// NewGORMStoreRepository creates a new instance of GORMStoreRepository.
func NewGORMStoreRepository(db *gorm.DB) *GORMStoreRepository {
	return &GORMStoreRepository{
		db: db,
	}
}

// FindAll retrieves all stores ordered by ID.
func (r *GORMStoreRepository) FindAll(ctx context.Context) ([]models.Store, error) {
	var stores []models.Store
	if err := r.db.WithContext(ctx).Order("id").Find(&stores).Error; err != nil {
		return nil, fmt.Errorf("failed to get all stores: %w", err)
	}
	return stores, nil
}

// FindByName retrieves the first store with the given name.
func (r *GORMStoreRepository) FindByName(ctx context.Context, name string) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&store).Error; err != nil {
		return nil, wrapLookup(err, "store with name %s", name)
	}
	return &store, nil
}

// FindByID retrieves a store by its ID.
func (r *GORMStoreRepository) FindByID(ctx context.Context, id uint) (*models.Store, error) {
	var store models.Store
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&store).Error; err != nil {
		return nil, wrapLookup(err, "store with ID %d", id)
	}
	return &store, nil
}

// Save inserts the store when it has no ID yet and updates it otherwise.
func (r *GORMStoreRepository) Save(ctx context.Context, store *models.Store) error {
	if err := r.db.WithContext(ctx).Save(store).Error; err != nil {
		return fmt.Errorf("failed to save store %s: %w", store.Name, err)
	}
	return nil
}

// Delete removes the store row. The foreign key on items rejects the delete
// while items still reference the store.
func (r *GORMStoreRepository) Delete(ctx context.Context, store *models.Store) error {
	if err := r.db.WithContext(ctx).Delete(&models.Store{}, store.ID).Error; err != nil {
		return fmt.Errorf("failed to delete store %s: %w", store.Name, err)
	}
	return nil
}
