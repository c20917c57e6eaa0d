package model

import "time"

// MagnetStatus is the lifecycle state of a cleaning magnet. Unlike bins,
// magnets have no capacity so there is no Full state.
type MagnetStatus string

const (
	MagnetActive      MagnetStatus = "Active"
	MagnetInactive    MagnetStatus = "Inactive"
	MagnetMaintenance MagnetStatus = "Maintenance"
)

// Magnet represents cleaning equipment installed along a transfer line.
type Magnet struct {
	ID        uint         `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Status    MagnetStatus `gorm:"size:16;not null;default:'Active'" json:"status"`
	BranchID  *uint        `gorm:"index" json:"branch_id"`
	CreatedAt time.Time    `gorm:"not null" json:"-"`
	UpdatedAt time.Time    `gorm:"not null" json:"-"`
}
