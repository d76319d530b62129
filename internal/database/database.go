package database

import (
	"fmt"
	"log"
	"strings"
	"time"

	"storeapi/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// MemoryURL selects the in-memory repositories instead of a relational engine.
const MemoryURL = "memory://"

// Dialector picks the GORM driver for a database URL.
//
//	postgres://... or postgresql://...  -> PostgreSQL
//	sqlite:///data.db                   -> SQLite file data.db
//	sqlite:///file:x?mode=memory        -> SQLite in-memory
func Dialector(url string) (gorm.Dialector, error) {
	switch {
	case strings.HasPrefix(url, "postgres://"):
		return postgres.Open(strings.Replace(url, "postgres://", "postgresql://", 1)), nil
	case strings.HasPrefix(url, "postgresql://"):
		return postgres.Open(url), nil
	case strings.HasPrefix(url, "sqlite://"):
		path := strings.TrimPrefix(strings.TrimPrefix(url, "sqlite://"), "/")
		if path == "" {
			return nil, fmt.Errorf("sqlite database URL %q has no path", url)
		}
		// Foreign keys are off by default in SQLite.
		if strings.Contains(path, "?") {
			path += "&_foreign_keys=1"
		} else {
			path += "?_foreign_keys=1"
		}
		return sqlite.Open(path), nil
	default:
		return nil, fmt.Errorf("unsupported database URL %q", url)
	}
}

// LogLevel maps a config string to a GORM log level. Unknown values mean warn.
func LogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "silent":
		return logger.Silent
	case "error":
		return logger.Error
	case "info":
		return logger.Info
	default:
		return logger.Warn
	}
}

// Open connects to the database behind url and sizes the connection pool.
func Open(url string, level logger.LogLevel) (*gorm.DB, error) {
	dialector, err := Dialector(url)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if dialector.Name() == "sqlite" {
		// A single writer avoids "database is locked" and keeps in-memory databases alive.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	}

	log.Printf("Connected to %s database", dialector.Name())
	return db, nil
}

// Migrate creates or updates the users, stores and items tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.User{}, &models.Store{}, &models.Item{}); err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}
	return nil
}
