package repositories

import (
	"context"
	"fmt"

	"storeapi/internal/models"

	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// FindByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapLookup(err, "user with username %s", username)
	}
	return &user, nil
}

// FindByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		return nil, wrapLookup(err, "user with ID %d", id)
	}
	return &user, nil
}

// Save inserts the user when it has no ID yet and updates it otherwise.
func (r *GORMUserRepository) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("failed to save user %s: %w", user.Username, err)
	}
	return nil
}
