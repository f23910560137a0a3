package models

import "time"

// User is a login credential. Username is the normalized email of the owning employee.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:255;not null;uniqueIndex"`
	Email        string `gorm:"size:255;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	IsActive     bool   `gorm:"not null;default:true"`
	IsStaff      bool   `gorm:"not null;default:false"`
	LastLogin    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (User) TableName() string { return "auth_users" }

type Session struct {
	ID        string    `gorm:"size:36;primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time
}

func (Session) TableName() string { return "sessions" }
