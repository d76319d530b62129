package repositories

import (
	"context"
	"fmt"

	"storeapi/internal/models"

	"gorm.io/gorm"
)

// GORMItemRepository is a GORM implementation of ItemRepository.
type GORMItemRepository struct {
	db *gorm.DB
}

// NewGORMItemRepository creates a new instance of GORMItemRepository.
func NewGORMItemRepository(db *gorm.DB) *GORMItemRepository {
	return &GORMItemRepository{
		db: db,
	}
}

// FindAll retrieves all items ordered by ID.
func (r *GORMItemRepository) FindAll(ctx context.Context) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get all items: %w", err)
	}
	return items, nil
}

// FindByName retrieves the first item with the given name.
func (r *GORMItemRepository) FindByName(ctx context.Context, name string) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("name = ?", name).First(&item).Error; err != nil {
		return nil, wrapLookup(err, "item with name %s", name)
	}
	return &item, nil
}

// FindByID retrieves an item by its ID.
func (r *GORMItemRepository) FindByID(ctx context.Context, id uint) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error; err != nil {
		return nil, wrapLookup(err, "item with ID %d", id)
	}
	return &item, nil
}

// FindByStoreID retrieves the items owned by a store.
func (r *GORMItemRepository) FindByStoreID(ctx context.Context, storeID uint) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).Where("store_id = ?", storeID).Order("id").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("failed to get items of store %d: %w", storeID, err)
	}
	return items, nil
}

// CountByStoreID counts the items that reference a store.
func (r *GORMItemRepository) CountByStoreID(ctx context.Context, storeID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Item{}).Where("store_id = ?", storeID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count items of store %d: %w", storeID, err)
	}
	return count, nil
}

// Save inserts the item when it has no ID yet and updates it otherwise.
func (r *GORMItemRepository) Save(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return fmt.Errorf("failed to save item %s: %w", item.Name, err)
	}
	return nil
}

// Delete removes the item row.
func (r *GORMItemRepository) Delete(ctx context.Context, item *models.Item) error {
	if err := r.db.WithContext(ctx).Delete(&models.Item{}, item.ID).Error; err != nil {
		return fmt.Errorf("failed to delete item %s: %w", item.Name, err)
	}
	return nil
}
