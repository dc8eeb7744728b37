// Package models contains the domain entities of the content graph.
package models

import (
	"time"

	"gorm.io/gorm"
)

// Account is a registered identity. Email and username are globally unique.
// The stored credential is a bcrypt digest and never leaves the API.
type Account struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Username  string         `gorm:"unique;not null" json:"username"`
	Email     string         `gorm:"unique;not null" json:"email"`
	Password  string         `gorm:"not null" json:"-"`
	Bio       string         `json:"bio"`
	Avatar    string         `json:"avatar"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
	Articles  []Article      `gorm:"foreignKey:AuthorID" json:"articles,omitempty"`
}
