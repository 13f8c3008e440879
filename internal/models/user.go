package models

import (
	"time"
)

type AuthProvider string

const (
	AuthProviderLocal   AuthProvider = "local"
	AuthProviderCasdoor AuthProvider = "casdoor"
)

type User struct {
	ID             uint         `json:"id" gorm:"primaryKey"`
	Email          string       `json:"email" gorm:"uniqueIndex;not null;size:255"`
	HashedPassword string       `json:"-" gorm:"size:255"`
	RefreshToken   *string      `json:"-" gorm:"type:text"`
	AuthProvider   AuthProvider `json:"auth_provider" gorm:"default:local;size:20"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
