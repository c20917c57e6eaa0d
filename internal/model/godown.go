package model

import "time"

// Godown represents a bulk raw-material storage location. CurrentStorage is a
// running total in tons, mutated by gate-entry unloads and transfer sessions,
// and clamped at zero on subtraction.
type Godown struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	Name           string    `gorm:"size:128;not null;index" json:"name"`
	Type           string    `gorm:"size:64" json:"type"`
	CurrentStorage float64   `gorm:"not null;default:0" json:"current_storage"`
	BranchID       *uint     `gorm:"index" json:"branch_id"`
	CreatedAt      time.Time `gorm:"not null" json:"-"`
	UpdatedAt      time.Time `gorm:"not null" json:"-"`
}
