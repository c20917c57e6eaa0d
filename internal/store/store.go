package store

import (
	"context"
	"time"

	"gorm.io/gorm"

	"millops-backend/internal/model"
)

// Store defines the interface for the operations that need transactional,
// multi-step database work. Plain per-entity CRUD goes through DB() directly.
type Store interface {
	DB() *gorm.DB

	// Transfer session lifecycle.
	StartSession(ctx context.Context, in StartSessionInput, now time.Time) (*model.TransferSession, error)
	DivertSession(ctx context.Context, sessionID, newBinID uint, quantity float64, now time.Time) (*model.TransferSession, error)
	StopSession(ctx context.Context, sessionID uint, quantity float64, now time.Time) (*model.TransferSession, error)
	CancelSession(ctx context.Context, sessionID uint, now time.Time) (*model.TransferSession, error)
	GetSession(ctx context.Context, sessionID uint) (*model.TransferSession, error)
	ListSessions(ctx context.Context, status string, branchID *uint) ([]model.TransferSession, error)

	// Cleaning compliance.
	CreateCleaningRecord(ctx context.Context, rec *model.MagnetCleaningRecord) error
	SessionMagnetStatus(ctx context.Context, sessionID uint, now time.Time) ([]MagnetIntervalStatus, error)
	ActiveOverdueMagnets(ctx context.Context, now time.Time) ([]MagnetIntervalStatus, error)

	// Gate entry unloading.
	UnloadGateEntry(ctx context.Context, gateEntryID uint, now time.Time) (*model.GateEntry, error)

	// Orders and dispatches.
	CreateDispatch(ctx context.Context, in DispatchInput, now time.Time) (*model.Dispatch, error)
	OrderSummary(ctx context.Context, orderID uint) (*OrderSummary, error)
}

// StartSessionInput carries the parameters for starting a transfer session.
// IntervalSecs is already in seconds; hour conversion happens at the API
// boundary. MagnetID/IntervalSecs are the fallback when no route
// configuration matches the (source, destination) pair.
type StartSessionInput struct {
	SourceGodownID   uint
	DestinationBinID uint
	MagnetID         *uint
	IntervalSecs     int64
	Notes            string
	BranchID         *uint
}

// DispatchInput carries a dispatch creation request.
type DispatchInput struct {
	OrderID       uint
	VehicleNumber string
	Notes         string
	Items         []DispatchItemInput
}

// DispatchItemInput is one line of a dispatch creation request.
type DispatchItemInput struct {
	OrderItemID      uint
	DispatchedQtyTon float64
	NumberOfBags     *int
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db *gorm.DB
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

// DB exposes the underlying handle for plain CRUD and reports.
func (s *gormStore) DB() *gorm.DB {
	return s.db
}
