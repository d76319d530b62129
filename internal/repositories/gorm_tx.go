package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// GORMTxManager is a GORM implementation of TxManager.
type GORMTxManager struct {
	db *gorm.DB
}

// NewGORMTxManager creates a new instance of GORMTxManager.
func NewGORMTxManager(db *gorm.DB) *GORMTxManager {
	return &GORMTxManager{
		db: db,
	}
}

// NewGORMRepositories binds all repositories to db, which may be a transaction.
func NewGORMRepositories(db *gorm.DB) Repositories {
	return Repositories{
		Users:  NewGORMUserRepository(db),
		Stores: NewGORMStoreRepository(db),
		Items:  NewGORMItemRepository(db),
	}
}

// WithinTx runs fn in a database transaction.
func (m *GORMTxManager) WithinTx(ctx context.Context, fn func(r Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewGORMRepositories(tx))
	})
}

// wrapLookup maps gorm.ErrRecordNotFound to ErrNotFound.
func wrapLookup(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, ErrNotFound)...)
	}
	return fmt.Errorf("failed to get "+format+": %w", append(args, err)...)
}
