package database

import (
	"fmt"
	"strings"
	"time"

	"rental-backend/internal/config"
	"rental-backend/internal/models"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects to Postgres. The schema is managed externally; AutoMigrate only runs when
// AUTO_MIGRATE is set.
func Open(cfg *config.Config, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DatabaseDSN,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		Logger:         NewLogger(log, cfg.DBLogLevel),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.DBMaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.DBMaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if cfg.AutoMigrate {
		log.Warn("AUTO_MIGRATE enabled, migrating schema")
		if err := Migrate(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

// Migrate creates the tables and the default lookup rows.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return SeedLookups(db)
}

// SeedLookups inserts the reference rows the application expects when they are missing.
func SeedLookups(db *gorm.DB) error {
	return db.Transaction(func(tx *gorm.DB) error {
		for _, name := range []string{"Эконом", "Комфорт", "Бизнес", "Внедорожник"} {
			if err := tx.Where(models.CarCategory{Name: name}).FirstOrCreate(&models.CarCategory{}).Error; err != nil {
				return fmt.Errorf("seed car categories: %w", err)
			}
		}
		for _, status := range []string{"свободен", "в аренде", "на обслуживании"} {
			if err := tx.Where(models.CarStatus{Status: status}).FirstOrCreate(&models.CarStatus{}).Error; err != nil {
				return fmt.Errorf("seed car statuses: %w", err)
			}
		}
		for _, name := range []string{"Администратор", "Менеджер", "Механик"} {
			if err := tx.Where(models.Role{Name: name}).FirstOrCreate(&models.Role{}).Error; err != nil {
				return fmt.Errorf("seed roles: %w", err)
			}
		}
		for _, status := range []string{"активен", "закрыт"} {
			if err := tx.Where(models.ContractStatus{Status: status}).FirstOrCreate(&models.ContractStatus{}).Error; err != nil {
				return fmt.Errorf("seed contract statuses: %w", err)
			}
		}
		return nil
	})
}

// NewLogger routes GORM logs through zap.
func NewLogger(log *zap.Logger, level string) gormlogger.Interface {
	var lvl gormlogger.LogLevel
	switch strings.ToLower(level) {
	case "silent":
		lvl = gormlogger.Silent
	case "error":
		lvl = gormlogger.Error
	case "info":
		lvl = gormlogger.Info
	default:
		lvl = gormlogger.Warn
	}
	return gormlogger.New(zap.NewStdLog(log.Named("gorm")), gormlogger.Config{
		SlowThreshold:             500 * time.Millisecond,
		LogLevel:                  lvl,
		IgnoreRecordNotFoundError: true,
	})
}
