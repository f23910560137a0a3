package models

type Branch struct {
	ID       uint   `gorm:"column:branch_id;primaryKey" json:"id"`
	Name     string `gorm:"size:120;not null;uniqueIndex" json:"name"`
	Address  string `gorm:"size:200;not null" json:"address"`
	Contacts string `gorm:"size:120;not null" json:"contacts"`
}

func (Branch) TableName() string { return "branches" }
