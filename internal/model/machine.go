package model

import "time"

// Machine is a mill machine registry entry (grinders, sifters, packers).
type Machine struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null;index" json:"name"`
	Type      string    `gorm:"size:64" json:"type"`
	Status    string    `gorm:"size:16;not null;default:'Active'" json:"status"`
	BranchID  *uint     `gorm:"index" json:"branch_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
