package model

import "time"

// Production order statuses.
const (
	ProductionPlanned   = "planned"
	ProductionRunning   = "running"
	ProductionCompleted = "completed"
)

// ProductionOrder plans a milling run. Its items describe the wheat blend:
// percentages across items must total 100.
type ProductionOrder struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Code       string    `gorm:"uniqueIndex;size:64;not null" json:"code"`
	TargetTons float64   `gorm:"not null" json:"target_tons"`
	Status     string    `gorm:"size:16;not null;default:'planned'" json:"status"`
	Notes      string    `gorm:"size:512" json:"notes"`
	BranchID   *uint     `gorm:"index" json:"branch_id"`
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`

	Items []ProductionOrderItem `gorm:"foreignKey:ProductionOrderID;constraint:OnDelete:CASCADE" json:"items"`
}

// ProductionOrderItem is one godown's share of a blend, as a percentage of
// the run's target tonnage.
type ProductionOrderItem struct {
	ID                uint    `gorm:"primaryKey" json:"id"`
	ProductionOrderID uint    `gorm:"index;not null" json:"production_order_id"`
	GodownID          uint    `gorm:"index;not null" json:"godown_id"`
	Percentage        float64 `gorm:"not null" json:"percentage"`

	Godown *Godown `gorm:"foreignKey:GodownID" json:"godown,omitempty"`
}
