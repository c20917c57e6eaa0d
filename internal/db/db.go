package db

import (
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"millops-backend/config"
	"millops-backend/internal/model"
)

// Models lists every persisted type, in FK dependency order. Shared with
// the test helpers so migrations stay in one place.
func Models() []interface{} {
	return []interface{}{
		&model.Branch{},
		&model.User{},
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
		&model.Supplier{},
		&model.GateEntry{},
		&model.LabTest{},
		&model.Claim{},
		&model.Machine{},
		&model.ProductionOrder{},
		&model.ProductionOrderItem{},
		&model.Customer{},
		&model.BagSize{},
		&model.Order{},
		&model.OrderItem{},
		&model.Dispatch{},
		&model.DispatchItem{},
		&model.PushSubscription{},
	}
}

// Init initializes the database connection and runs migrations.
func Init(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)

	log.Println("Running database migrations...")
	if err := db.AutoMigrate(Models()...); err != nil {
		return nil, fmt.Errorf("automigrate failed: %w", err)
	}

	if err := applyIndexDDL(db); err != nil {
		log.Printf("Warning: failed to apply some index DDL: %v. Continuing without them.", err)
	}

	log.Println("Database initialization complete.")
	return db, nil
}

// applyIndexDDL adds the indexes the hot query paths lean on. The overdue
// monitor scans active sessions every tick and the reports filter cleaning
// records by magnet and time range.
func applyIndexDDL(db *gorm.DB) error {
	ddls := []string{
		"CREATE INDEX IF NOT EXISTS idx_transfer_sessions_status ON transfer_sessions (status);",
		"CREATE INDEX IF NOT EXISTS idx_transfer_sessions_started_at ON transfer_sessions (started_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_cleaning_records_magnet_cleaned_at ON magnet_cleaning_records (magnet_id, cleaned_at DESC);",
		"CREATE INDEX IF NOT EXISTS idx_bin_transfers_session ON bin_transfers (transfer_session_id, sequence_no);",
		"CREATE INDEX IF NOT EXISTS idx_dispatch_items_order_item ON dispatch_items (order_item_id);",
	}

	for _, ddl := range ddls {
		if err := db.Exec(ddl).Error; err != nil {
			return fmt.Errorf("DDL failed on %q: %w", ddl, err)
		}
	}
	return nil
}
