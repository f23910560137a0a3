// Package testutil opens throwaway sqlite databases for package tests.
package testutil

import (
	"testing"
	"time"

	"rental-backend/internal/database"
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// NewDB returns a migrated in-memory database with foreign keys enforced.
// A single connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=1"), &gorm.Config{
		Logger:         gormlogger.Default.LogMode(gormlogger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, database.Migrate(db))
	return db
}

func Date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Fixtures holds the seeded lookup rows and a branch.
type Fixtures struct {
	DB *gorm.DB

	Branch       models.Branch
	Category     models.CarCategory
	FreeStatus   models.CarStatus
	RentedStatus models.CarStatus
	AdminRole    models.Role
	ManagerRole  models.Role
	OpenStatus   models.ContractStatus
	ClosedStatus models.ContractStatus
}

// Seed opens a database and loads the default lookups plus one branch.
func Seed(t *testing.T) *Fixtures {
	t.Helper()
	db := NewDB(t)
	f := &Fixtures{DB: db}

	f.Branch = models.Branch{Name: "Центральный", Address: "Москва, ул. Ленина, 1", Contacts: "+74950000000"}
	require.NoError(t, db.Create(&f.Branch).Error)

	require.NoError(t, db.Where("name = ?", "Эконом").First(&f.Category).Error)
	require.NoError(t, db.Where("status = ?", "свободен").First(&f.FreeStatus).Error)
	require.NoError(t, db.Where("status = ?", "в аренде").First(&f.RentedStatus).Error)
	require.NoError(t, db.Where("name = ?", "Администратор").First(&f.AdminRole).Error)
	require.NoError(t, db.Where("name = ?", "Менеджер").First(&f.ManagerRole).Error)
	require.NoError(t, db.Where("status = ?", "активен").First(&f.OpenStatus).Error)
	require.NoError(t, db.Where("status = ?", "закрыт").First(&f.ClosedStatus).Error)
	return f
}

// Car inserts a free car in the fixture branch.
func (f *Fixtures) Car(t *testing.T, plate, vin, price string) models.Car {
	t.Helper()
	car := models.Car{
		Plate:      plate,
		VIN:        vin,
		Brand:      "Kia",
		Model:      "Rio",
		YearMade:   2021,
		Mileage:    15000,
		CategoryID: f.Category.ID,
		StatusID:   f.FreeStatus.ID,
		BranchID:   f.Branch.ID,
		DailyPrice: decimal.RequireFromString(price),
	}
	require.NoError(t, f.DB.Create(&car).Error)
	return car
}

func (f *Fixtures) Client(t *testing.T, name, passport string) models.Client {
	t.Helper()
	c := models.Client{
		FullName:  name,
		BirthDate: Date(1990, 5, 17),
		Passport:  passport,
		DLNumber:  "77АВ123456",
		Phone:     "+79991234567",
		Email:     "client" + passport + "@example.com",
		Address:   "Москва",
	}
	require.NoError(t, f.DB.Create(&c).Error)
	return c
}

// Contract inserts an open contract priced from the car's current rate.
func (f *Fixtures) Contract(t *testing.T, client models.Client, car models.Car, issue, ret time.Time) models.Contract {
	t.Helper()
	days := int64(pricing.Days(issue, ret))
	c := models.Contract{
		StatusID:       f.OpenStatus.ID,
		ClientID:       client.ID,
		CarID:          car.ID,
		CreatedOn:      issue,
		IssueDate:      issue,
		ReturnDate:     ret,
		Payment:        models.PaymentCash,
		IssueBranchID:  f.Branch.ID,
		ReturnBranchID: f.Branch.ID,
		DailyPrice:     car.DailyPrice,
		TotalAmount:    car.DailyPrice.Mul(decimal.NewFromInt(days)),
	}
	require.NoError(t, f.DB.Create(&c).Error)
	return c
}
