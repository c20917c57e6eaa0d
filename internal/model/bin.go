package model

import "time"

// BinStatus is the lifecycle state of a storage bin.
type BinStatus string

const (
	BinActive      BinStatus = "Active"
	BinInactive    BinStatus = "Inactive"
	BinMaintenance BinStatus = "Maintenance"
	BinFull        BinStatus = "Full"
)

// Bin represents a discrete, capacity-bounded storage container. Status
// transitions to Full as soon as CurrentQuantity reaches Capacity.
type Bin struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	BinNumber       string    `gorm:"uniqueIndex;size:64;not null" json:"bin_number"`
	Capacity        float64   `gorm:"not null" json:"capacity"`
	CurrentQuantity float64   `gorm:"not null;default:0" json:"current_quantity"`
	Status          BinStatus `gorm:"size:16;not null;default:'Active'" json:"status"`
	BranchID        *uint     `gorm:"index" json:"branch_id"`
	CreatedAt       time.Time `gorm:"not null" json:"-"`
	UpdatedAt       time.Time `gorm:"not null" json:"-"`
}
