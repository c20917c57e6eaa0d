package model

import "time"

// Branch represents one mill/warehouse site. Most branch-owned rows carry a
// BranchID and list/create endpoints scope to it via the X-Branch-Id header.
type Branch struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:128;not null" json:"name"`
	Address   string    `gorm:"size:512" json:"address"`
	CreatedAt time.Time `gorm:"not null" json:"-"`
	UpdatedAt time.Time `gorm:"not null" json:"-"`
}

// User is a back-office operator account.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"uniqueIndex;size:64;not null" json:"username"`
	FullName  string    `gorm:"size:128" json:"full_name"`
	Role      string    `gorm:"size:32;not null" json:"role"`
	BranchID  *uint     `gorm:"index" json:"branch_id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Branch *Branch `gorm:"foreignKey:BranchID" json:"-"`
}
