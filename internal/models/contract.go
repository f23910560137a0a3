package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	PaymentCash     = "наличный"
	PaymentCashless = "безналичный"
)

var PaymentMethods = []string{PaymentCash, PaymentCashless}

type Contract struct {
	ID       uint            `gorm:"column:contract_id;primaryKey"`
	StatusID uint            `gorm:"column:cstatus_id;not null"`
	Status   *ContractStatus `gorm:"foreignKey:StatusID;belongsTo"`
	ClientID uint            `gorm:"not null;index"`
	Client   *Client         `gorm:"foreignKey:ClientID;belongsTo"`
	CarID    uint            `gorm:"not null;index"`
	Car      *Car            `gorm:"foreignKey:CarID;belongsTo"`

	// Business date of the contract. Not managed by GORM timestamps.
	CreatedOn  time.Time `gorm:"column:created_at;type:date;not null"`
	IssueDate  time.Time `gorm:"type:date;not null;index"`
	ReturnDate time.Time `gorm:"type:date;not null"`
	Payment    string    `gorm:"size:12;not null"`

	IssueBranchID  uint    `gorm:"not null"`
	IssueBranch    *Branch `gorm:"foreignKey:IssueBranchID;belongsTo"`
	ReturnBranchID uint    `gorm:"not null"`
	ReturnBranch   *Branch `gorm:"foreignKey:ReturnBranchID;belongsTo"`

	// Price snapshot taken from the car when the contract was priced.
	DailyPrice  decimal.Decimal `gorm:"type:numeric(10,2);not null"`
	TotalAmount decimal.Decimal `gorm:"type:numeric(12,2);not null"`
}

func (Contract) TableName() string { return "contracts" }
