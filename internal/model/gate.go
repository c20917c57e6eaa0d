package model

import "time"

// Gate entry statuses.
const (
	GateEntryPending  = "pending"
	GateEntryUnloaded = "unloaded"
	GateEntryRejected = "rejected"
)

// Supplier is a grain supplier whose vehicles arrive at the gate.
type Supplier struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null;index" json:"name"`
	Phone     string    `gorm:"size:32" json:"phone"`
	Address   string    `gorm:"size:512" json:"address"`
	BranchID  *uint     `gorm:"index" json:"branch_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// GateEntry logs one incoming grain vehicle: weighbridge readings and the
// godown the load ends up in. Net weight is gross minus tare, derived at the
// API boundary rather than stored.
type GateEntry struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	VehicleNumber string     `gorm:"size:32;not null;index" json:"vehicle_number"`
	SupplierID    uint       `gorm:"index;not null" json:"supplier_id"`
	GrossWeight   float64    `gorm:"not null" json:"gross_weight"`
	TareWeight    float64    `gorm:"not null" json:"tare_weight"`
	GodownID      *uint      `gorm:"index" json:"godown_id"`
	Status        string     `gorm:"size:16;not null;default:'pending'" json:"status"`
	Notes         string     `gorm:"size:512" json:"notes"`
	EnteredAt     time.Time  `gorm:"not null;index" json:"-"`
	UnloadedAt    *time.Time `json:"-"`
	BranchID      *uint      `gorm:"index" json:"branch_id"`
	CreatedAt     time.Time  `json:"-"`
	UpdatedAt     time.Time  `json:"-"`

	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Godown   *Godown   `gorm:"foreignKey:GodownID" json:"godown,omitempty"`
}

// LabTest is a quality test performed on a gate entry's load.
type LabTest struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	GateEntryID uint      `gorm:"index;not null" json:"gate_entry_id"`
	Moisture    float64   `json:"moisture"`
	Gluten      float64   `json:"gluten"`
	TestWeight  float64   `json:"test_weight"`
	Notes       string    `gorm:"size:512" json:"notes"`
	TestedAt    time.Time `gorm:"not null" json:"-"`
	CreatedAt   time.Time `json:"-"`

	GateEntry *GateEntry `gorm:"foreignKey:GateEntryID" json:"gate_entry,omitempty"`
}

// Claim statuses.
const (
	ClaimOpen    = "open"
	ClaimSettled = "settled"
)

// Claim tracks a quality or shortage claim raised against a supplier.
type Claim struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	SupplierID  uint      `gorm:"index;not null" json:"supplier_id"`
	GateEntryID *uint     `gorm:"index" json:"gate_entry_id"`
	Amount      float64   `gorm:"not null" json:"amount"`
	Reason      string    `gorm:"size:512;not null" json:"reason"`
	Status      string    `gorm:"size:16;not null;default:'open'" json:"status"`
	BranchID    *uint     `gorm:"index" json:"branch_id"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	Supplier  *Supplier  `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	GateEntry *GateEntry `gorm:"foreignKey:GateEntryID" json:"gate_entry,omitempty"`
}
