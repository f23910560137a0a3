package models

import "strings"

// Lookup tables. Their rows are reference data maintained outside the application.

type CarCategory struct {
	ID   uint   `gorm:"column:category_id;primaryKey" json:"id"`
	Name string `gorm:"size:60;not null;uniqueIndex" json:"name"`
}

func (CarCategory) TableName() string { return "car_categories" }

type CarStatus struct {
	ID     uint   `gorm:"column:status_id;primaryKey" json:"id"`
	Status string `gorm:"size:40;not null;uniqueIndex" json:"status"`
}

func (CarStatus) TableName() string { return "car_statuses" }

// freeCarStatuses are the status names of a car that can be rented out.
var freeCarStatuses = []string{"свободен", "доступен"}

// IsFree reports whether a car in this status can be rented out.
func (s CarStatus) IsFree() bool {
	return IsFreeCarStatus(s.Status)
}

func IsFreeCarStatus(status string) bool {
	v := strings.ToLower(strings.TrimSpace(status))
	for _, f := range freeCarStatuses {
		if v == f {
			return true
		}
	}
	return false
}

type Role struct {
	ID   uint   `gorm:"column:role_id;primaryKey" json:"id"`
	Name string `gorm:"size:60;not null;uniqueIndex" json:"name"`
}

func (Role) TableName() string { return "roles" }

type ContractStatus struct {
	ID     uint   `gorm:"column:cstatus_id;primaryKey" json:"id"`
	Status string `gorm:"size:40;not null;uniqueIndex" json:"status"`
}

func (ContractStatus) TableName() string { return "contract_statuses" }
