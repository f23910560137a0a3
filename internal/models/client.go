package models

import "time"

type Client struct {
	ID        uint      `gorm:"column:client_id;primaryKey"`
	FullName  string    `gorm:"size:255;not null"`
	BirthDate time.Time `gorm:"type:date;not null"`
	Passport  string    `gorm:"size:20;not null;uniqueIndex"`
	DLNumber  string    `gorm:"column:dl_number;size:30;not null"`
	Phone     string    `gorm:"size:20;not null"`
	Email     string    `gorm:"size:255;not null"`
	Address   string    `gorm:"size:255;not null"`
}

func (Client) TableName() string { return "clients" }
