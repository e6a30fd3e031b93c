package models

import (
	"strings"
	"time"
)

// User is a back-office account that records ledger entries.
type User struct {
	Base
	Username     string        `gorm:"uniqueIndex;size:150;not null" json:"username"`
	Email        string        `gorm:"uniqueIndex;size:254;not null" json:"email"`
	Password     string        `gorm:"not null" json:"-"`
	FirstName    string        `gorm:"size:150" json:"first_name"`
	LastName     string        `gorm:"size:150" json:"last_name"`
	IsActive     bool          `gorm:"not null" json:"is_active"`
	LastLoginAt  *time.Time    `json:"last_login_at,omitempty"`
	Transactions []Transaction `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// DisplayName returns "First Last" when set, otherwise the username.
func (u *User) DisplayName() string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full == "" {
		return u.Username
	}
	return full
}
