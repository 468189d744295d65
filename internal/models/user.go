package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserStatus is the lifecycle state of an account.
type UserStatus string

const (
	StatusActive      UserStatus = "active"
	StatusSuspended   UserStatus = "suspended"
	StatusDeactivated UserStatus = "deactivated"
)

// User is an account that owns sessions and uploads. Settings holds per-user
// preferences, including encrypted API credentials for hosted LLM providers.
type User struct {
	gorm.Model

	Username string `gorm:"unique;not null"`
	Email    string `gorm:"uniqueIndex;not null"`
	Password string `gorm:"size:255" json:"-"`

	Status      UserStatus `gorm:"type:varchar(20);default:'active';not null"`
	LastLoginAt *time.Time
	Settings    datatypes.JSON
}

func (User) TableName() string {
	return "users"
}
