package model

import "time"

// PushSubscription holds the information for a browser push subscription.
// Subscribers pick the magnets they want overdue-cleaning alerts for.
type PushSubscription struct {
	Endpoint  string    `gorm:"primaryKey"`
	P256DH    string    `gorm:"column:p256dh;not null"`
	Auth      string    `gorm:"not null"`
	CreatedAt time.Time `gorm:"not null"`

	// Associations
	Magnets []*Magnet `gorm:"many2many:subscription_magnet_mapping;"`
}
