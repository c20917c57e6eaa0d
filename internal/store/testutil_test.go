package store

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"millops-backend/internal/model"
)

// openTestDB opens a per-test in-memory SQLite database with the full schema
// migrated.
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.ReplaceAll(t.Name(), "/", "_")
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&model.Branch{},
		&model.Godown{},
		&model.Bin{},
		&model.Magnet{},
		&model.RouteConfiguration{},
		&model.RouteStage{},
		&model.TransferSession{},
		&model.TransferSessionMagnet{},
		&model.BinTransfer{},
		&model.MagnetCleaningRecord{},
		&model.WasteEntry{},
		&model.Customer{},
		&model.BagSize{},
		&model.Order{},
		&model.OrderItem{},
		&model.Dispatch{},
		&model.DispatchItem{},
		&model.Supplier{},
		&model.GateEntry{},
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
	})
	return db
}
