package store

import (
	"context"
	"fmt"
	"time"

	"rental-backend/internal/models"
)

type HomeCounters struct {
	TotalClients    int64
	TotalCars       int64
	ActiveContracts int64
	FreeCars        int64
	BusyCars        int64
	ContractsToday  int64
	ContractsWeek   int64
	LastContracts   []models.Contract
}

// HomeCounters computes the dashboard counters for the given business date.
func (s *Store) HomeCounters(ctx context.Context, today time.Time) (HomeCounters, error) {
	db := s.db.WithContext(ctx)
	var out HomeCounters

	if err := db.Model(&models.Client{}).Count(&out.TotalClients).Error; err != nil {
		return out, fmt.Errorf("count clients: %w", err)
	}
	if err := db.Model(&models.Car{}).Count(&out.TotalCars).Error; err != nil {
		return out, fmt.Errorf("count cars: %w", err)
	}
	if err := db.Model(&models.Contract{}).Where("return_date >= ?", today).Count(&out.ActiveContracts).Error; err != nil {
		return out, fmt.Errorf("count active contracts: %w", err)
	}
	if err := db.Model(&models.Contract{}).Where("issue_date = ?", today).Count(&out.ContractsToday).Error; err != nil {
		return out, fmt.Errorf("count contracts today: %w", err)
	}
	if err := db.Model(&models.Contract{}).Where("issue_date >= ?", today.AddDate(0, 0, -7)).Count(&out.ContractsWeek).Error; err != nil {
		return out, fmt.Errorf("count contracts this week: %w", err)
	}

	// Status names are matched in Go so the comparison is case-insensitive for Cyrillic
	// on every database.
	var statuses []models.CarStatus
	if err := db.Find(&statuses).Error; err != nil {
		return out, fmt.Errorf("car statuses: %w", err)
	}
	free := make([]uint, 0, len(statuses))
	for _, st := range statuses {
		if st.IsFree() {
			free = append(free, st.ID)
		}
	}
	if len(free) > 0 {
		if err := db.Model(&models.Car{}).Where("status_id IN ?", free).Count(&out.FreeCars).Error; err != nil {
			return out, fmt.Errorf("count free cars: %w", err)
		}
	}
	out.BusyCars = out.TotalCars - out.FreeCars

	err := db.Preload("Client").Preload("Car").
		Order("issue_date DESC, contract_id DESC").
		Limit(5).
		Find(&out.LastContracts).Error
	if err != nil {
		return out, fmt.Errorf("last contracts: %w", err)
	}

	return out, nil
}

// RevenueRows returns contracts with their cars for revenue aggregation.
func (s *Store) RevenueRows(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	if err := s.db.WithContext(ctx).Preload("Car").Order("issue_date, contract_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("revenue rows: %w", err)
	}
	return out, nil
}

// CarsWithCategory returns every car with its category for the category chart.
func (s *Store) CarsWithCategory(ctx context.Context) ([]models.Car, error) {
	var out []models.Car
	if err := s.db.WithContext(ctx).Preload("Category").Order("car_id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("cars by category: %w", err)
	}
	return out, nil
}
