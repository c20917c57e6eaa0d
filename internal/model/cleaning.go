package model

import "time"

// MagnetCleaningRecord is one timestamped cleaning event for a magnet,
// optionally linked to the session during which it happened. The log is
// append-only; rows change only through the explicit edit/delete endpoints.
type MagnetCleaningRecord struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	MagnetID          uint      `gorm:"index;not null" json:"magnet_id"`
	TransferSessionID *uint     `gorm:"index" json:"transfer_session_id"`
	CleanedAt         time.Time `gorm:"not null;index" json:"-"`
	BeforePhoto       string    `gorm:"size:256" json:"before_photo"`
	AfterPhoto        string    `gorm:"size:256" json:"after_photo"`
	Notes             string    `gorm:"size:512" json:"notes"`
	CreatedAt         time.Time `json:"-"`
	UpdatedAt         time.Time `json:"-"`

	Magnet          *Magnet          `gorm:"foreignKey:MagnetID" json:"magnet,omitempty"`
	TransferSession *TransferSession `gorm:"foreignKey:TransferSessionID" json:"-"`
}

// WasteEntry is waste recorded against a session and godown. It is an
// independent ledger; the interval logic never reads it.
type WasteEntry struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	TransferSessionID *uint     `gorm:"index" json:"transfer_session_id"`
	GodownID          uint      `gorm:"index;not null" json:"godown_id"`
	Quantity          float64   `gorm:"not null" json:"quantity"`
	Notes             string    `gorm:"size:512" json:"notes"`
	RecordedAt        time.Time `gorm:"not null" json:"-"`
	CreatedAt         time.Time `json:"-"`

	Godown *Godown `gorm:"foreignKey:GodownID" json:"godown,omitempty"`
}
