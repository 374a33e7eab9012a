package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Roles stored on User.Role.
const (
	RoleCustomer = "customer"
	RoleProducer = "producer"
)

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         string    `gorm:"not null;default:customer" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// ParseRole maps a requested role onto a stored one. "user" is the legacy
// name of the customer role.
func ParseRole(s string) (string, bool) {
	switch s {
	case "", "user", RoleCustomer:
		return RoleCustomer, true
	case RoleProducer:
		return RoleProducer, true
	}
	return "", false
}
