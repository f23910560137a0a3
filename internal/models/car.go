package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Car struct {
	ID         uint            `gorm:"column:car_id;primaryKey"`
	Plate      string          `gorm:"size:12;not null;uniqueIndex"`
	VIN        string          `gorm:"column:vin;size:17;not null;uniqueIndex"`
	Brand      string          `gorm:"size:50;not null"`
	Model      string          `gorm:"size:50;not null"`
	YearMade   int             `gorm:"not null"`
	Mileage    int             `gorm:"not null"`
	CategoryID uint            `gorm:"not null"`
	Category   *CarCategory    `gorm:"foreignKey:CategoryID;belongsTo"`
	StatusID   uint            `gorm:"not null"`
	Status     *CarStatus      `gorm:"foreignKey:StatusID;belongsTo"`
	BranchID   uint            `gorm:"not null"`
	Branch     *Branch         `gorm:"foreignKey:BranchID;belongsTo"`
	DailyPrice decimal.Decimal `gorm:"type:numeric(10,2);not null"`
}

func (Car) TableName() string { return "cars" }

// Title is the "Brand Model" caption used in lists and reports.
func (c Car) Title() string {
	return fmt.Sprintf("%s %s", c.Brand, c.Model)
}

// Label adds the plate to the title, e.g. "Kia Rio (А123ВС 77)".
func (c Car) Label() string {
	return fmt.Sprintf("%s %s (%s)", c.Brand, c.Model, c.Plate)
}
