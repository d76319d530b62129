package database_test

import (
	"testing"

	"storeapi/internal/database"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func TestDialector(t *testing.T) {
	tests := []struct {
		url     string
		driver  string
		wantErr bool
	}{
		{url: "postgres://u:p@localhost:5432/db", driver: "postgres"},
		{url: "postgresql://u:p@localhost:5432/db", driver: "postgres"},
		{url: "sqlite:///data.db", driver: "sqlite"},
		{url: "sqlite://", wantErr: true},
		{url: "mysql://localhost/db", wantErr: true},
		{url: database.MemoryURL, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			d, err := database.Dialector(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.driver, d.Name())
		})
	}
}

func TestLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, database.LogLevel("silent"))
	assert.Equal(t, logger.Error, database.LogLevel("ERROR"))
	assert.Equal(t, logger.Info, database.LogLevel("info"))
	assert.Equal(t, logger.Warn, database.LogLevel("bogus"))
}

func TestOpenAndMigrate(t *testing.T) {
	db, err := database.Open("sqlite:///file:"+uuid.NewString()+"?mode=memory&cache=shared", logger.Silent)
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))

	for _, table := range []string{"users", "stores", "items"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
}
