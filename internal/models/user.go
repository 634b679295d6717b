package models

import (
	"time"

	"gorm.io/gorm"
)

// User is a staff account. Shop clients are not users.
type User struct {
	ID           uint           `json:"id" gorm:"primaryKey"`
	Username     string         `json:"username" gorm:"size:80;unique;not null"`
	Email        string         `json:"email" gorm:"size:120;unique;not null"`
	PasswordHash string         `json:"-" gorm:"size:255;not null"`
	Role         string         `json:"role" gorm:"size:20;not null;default:'simple_user'"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}

type UserRole string

const (
	Admin        UserRole = "admin"
	AdvancedUser UserRole = "advanced_user"
	SimpleUser   UserRole = "simple_user"
)

func ValidRole(role string) bool {
	switch UserRole(role) {
	case Admin, AdvancedUser, SimpleUser:
		return true
	}
	return false
}
