package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"fitshop_backend/database"
	"fitshop_backend/internal/config"
)

// NewTestDB opens a private in-memory sqlite database with the full schema.
// It is closed when the test finishes.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	cfg := &config.Config{}
	cfg.Server.Env = "test"
	cfg.Database.Driver = "sqlite"
	cfg.Database.DSN = fmt.Sprintf("file:%s_%s?mode=memory&cache=shared", name, uuid.NewString())

	db, err := database.Open(cfg)
	require.NoError(t, err, "open sqlite")
	require.NoError(t, database.AutoMigrate(db), "migrate sqlite")

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}
