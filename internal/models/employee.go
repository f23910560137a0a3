package models

type Employee struct {
	ID       uint    `gorm:"column:employee_id;primaryKey"`
	FullName string  `gorm:"size:255;not null"`
	Passport string  `gorm:"size:20;not null;uniqueIndex"`
	RoleID   uint    `gorm:"not null"`
	Role     *Role   `gorm:"foreignKey:RoleID;belongsTo"`
	BranchID uint    `gorm:"not null"`
	Branch   *Branch `gorm:"foreignKey:BranchID;belongsTo"`
	Phone    string  `gorm:"size:20;not null"`
	Email    string  `gorm:"size:255;not null"` // login identity, unique case-insensitively
}

func (Employee) TableName() string { return "employees" }
