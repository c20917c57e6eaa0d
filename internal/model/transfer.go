package model

import "time"

// SessionStatus is the lifecycle state of a transfer session.
type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionCompleted SessionStatus = "completed"
	SessionCancelled SessionStatus = "cancelled"
)

// TransferSession is one continuous material movement from a source godown
// into one or more bins over time. CurrentBinID may differ from
// DestinationBinID after a divert. Cleaning intervals are always measured
// from StartedAt, never from CurrentBinStartedAt.
//
// Version guards divert/stop against concurrent writers: every mutation
// increments it and a write whose expected version does not match fails.
type TransferSession struct {
	ID                  uint          `gorm:"primaryKey" json:"id"`
	SourceGodownID      uint          `gorm:"index;not null" json:"source_godown_id"`
	DestinationBinID    uint          `gorm:"not null" json:"destination_bin_id"`
	CurrentBinID        uint          `gorm:"not null" json:"current_bin_id"`
	MagnetID            *uint         `gorm:"index" json:"magnet_id"`
	IntervalSecs        int64         `json:"interval_secs"`
	StartedAt           time.Time     `gorm:"not null;index" json:"-"`
	CurrentBinStartedAt time.Time     `gorm:"not null" json:"-"`
	StoppedAt           *time.Time    `json:"-"`
	TransferredQuantity *float64      `json:"transferred_quantity"`
	Status              SessionStatus `gorm:"size:16;not null;default:'active';index" json:"status"`
	Notes               string        `gorm:"size:512" json:"notes"`
	Version             int64         `gorm:"not null;default:1" json:"-"`
	BranchID            *uint         `gorm:"index" json:"branch_id"`
	CreatedAt           time.Time     `json:"-"`
	UpdatedAt           time.Time     `json:"-"`

	SourceGodown   *Godown                 `gorm:"foreignKey:SourceGodownID" json:"source_godown,omitempty"`
	DestinationBin *Bin                    `gorm:"foreignKey:DestinationBinID" json:"destination_bin,omitempty"`
	CurrentBin     *Bin                    `gorm:"foreignKey:CurrentBinID" json:"current_bin,omitempty"`
	Magnets        []TransferSessionMagnet `gorm:"foreignKey:TransferSessionID;constraint:OnDelete:CASCADE" json:"magnets,omitempty"`
	BinTransfers   []BinTransfer           `gorm:"foreignKey:TransferSessionID;constraint:OnDelete:CASCADE" json:"bin_transfers,omitempty"`
}

// TransferSessionMagnet is one magnet participating in a session's route,
// carrying its own cleaning interval and position on the line.
type TransferSessionMagnet struct {
	ID                uint  `gorm:"primaryKey" json:"id"`
	TransferSessionID uint  `gorm:"index;not null" json:"transfer_session_id"`
	MagnetID          uint  `gorm:"index;not null" json:"magnet_id"`
	IntervalSecs      int64 `gorm:"not null" json:"interval_secs"`
	SequenceNo        int   `gorm:"not null" json:"sequence_no"`

	Magnet *Magnet `gorm:"foreignKey:MagnetID" json:"magnet,omitempty"`
}

// BinTransfer is one (session, bin) occupancy span. It is opened when the
// session starts or diverts into the bin and closed (EndedAt + Quantity set)
// when the session diverts away or stops.
type BinTransfer struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	TransferSessionID uint       `gorm:"index;not null" json:"transfer_session_id"`
	BinID             uint       `gorm:"index;not null" json:"bin_id"`
	SequenceNo        int        `gorm:"not null" json:"sequence_no"`
	StartedAt         time.Time  `gorm:"not null" json:"-"`
	EndedAt           *time.Time `json:"-"`
	Quantity          *float64   `json:"quantity"`

	Bin *Bin `gorm:"foreignKey:BinID" json:"bin,omitempty"`
}
