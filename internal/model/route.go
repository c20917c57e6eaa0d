package model

import "time"

// Stage component types.
const (
	StageGodown = "godown"
	StageMagnet = "magnet"
	StageBin    = "bin"
)

// RouteConfiguration is an ordered template of stages (godown → magnets →
// bin) defining the defaults for a transfer lane. A valid route's first stage
// is a godown, its last stage a bin, with zero or more magnet stages between.
type RouteConfiguration struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	BranchID  *uint     `gorm:"index" json:"branch_id"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`

	Stages []RouteStage `gorm:"foreignKey:RouteConfigurationID;constraint:OnDelete:CASCADE" json:"stages"`
}

// RouteStage is one step of a route. IntervalSecs is only meaningful on
// magnet stages and carries that magnet's cleaning interval in seconds.
type RouteStage struct {
	ID                   uint   `gorm:"primaryKey" json:"id"`
	RouteConfigurationID uint   `gorm:"index;not null" json:"route_configuration_id"`
	SequenceNo           int    `gorm:"not null" json:"sequence_no"`
	ComponentType        string `gorm:"size:16;not null" json:"component_type"`
	ComponentID          uint   `gorm:"not null" json:"component_id"`
	IntervalSecs         int64  `json:"interval_secs"`
}
