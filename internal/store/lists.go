package store

import (
	"context"
	"fmt"

	"rental-backend/internal/models"

	"gorm.io/gorm"
)

func list[T any](ctx context.Context, db *gorm.DB, q ListQuery, build func(*gorm.DB) *gorm.DB, preloads ...string) (Page[T], error) {
	var total int64
	base := build(db.WithContext(ctx).Model(new(T)))
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return Page[T]{}, fmt.Errorf("count: %w", err)
	}

	var items []T
	fetch := base.Session(&gorm.Session{})
	for _, p := range preloads {
		fetch = fetch.Preload(p)
	}
	if err := fetch.Scopes(Paginate(q)).Find(&items).Error; err != nil {
		return Page[T]{}, fmt.Errorf("list: %w", err)
	}
	return NewPage(items, total, q), nil
}

// ListCars searches plate, VIN, brand and model.
func (s *Store) ListCars(ctx context.Context, q ListQuery) (Page[models.Car], error) {
	return list[models.Car](ctx, s.db, q, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(q.Search, "cars.plate", "cars.vin", "cars.brand", "cars.model")).
			Order("cars.brand, cars.model, cars.plate")
	}, "Category", "Status", "Branch")
}

// ListClients searches name, passport, phone and email. Sort: name_asc (default), name_desc.
func (s *Store) ListClients(ctx context.Context, q ListQuery) (Page[models.Client], error) {
	order := "clients.full_name ASC"
	if q.Sort == "name_desc" {
		order = "clients.full_name DESC"
	}
	return list[models.Client](ctx, s.db, q, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(q.Search, "clients.full_name", "clients.passport", "clients.phone", "clients.email")).
			Order(order + ", clients.client_id")
	})
}

// ListEmployees searches name, passport, phone and email. Sort: name_asc (default), name_desc.
func (s *Store) ListEmployees(ctx context.Context, q ListQuery) (Page[models.Employee], error) {
	order := "employees.full_name ASC"
	if q.Sort == "name_desc" {
		order = "employees.full_name DESC"
	}
	return list[models.Employee](ctx, s.db, q, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(q.Search, "employees.full_name", "employees.passport", "employees.phone", "employees.email")).
			Order(order + ", employees.employee_id")
	}, "Role", "Branch")
}

// ListContracts searches the client name and car plate. Sort: issue_desc (default), issue_asc.
func (s *Store) ListContracts(ctx context.Context, q ListQuery) (Page[models.Contract], error) {
	order := "contracts.issue_date DESC, contracts.contract_id DESC"
	if q.Sort == "issue_asc" {
		order = "contracts.issue_date ASC, contracts.contract_id ASC"
	}
	return list[models.Contract](ctx, s.db, q, func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN clients ON clients.client_id = contracts.client_id").
			Joins("JOIN cars ON cars.car_id = contracts.car_id").
			Scopes(searchScope(q.Search, "clients.full_name", "cars.plate")).
			Order(order)
	}, "Client", "Car", "Status", "IssueBranch", "ReturnBranch")
}

// ListBranches searches by name.
func (s *Store) ListBranches(ctx context.Context, q ListQuery) (Page[models.Branch], error) {
	return list[models.Branch](ctx, s.db, q, func(db *gorm.DB) *gorm.DB {
		return db.Scopes(searchScope(q.Search, "branches.name", "branches.address")).
			Order("branches.name")
	})
}

// ReportContracts returns every contract with the records a report prints, newest issue first.
func (s *Store) ReportContracts(ctx context.Context) ([]models.Contract, error) {
	var out []models.Contract
	err := s.db.WithContext(ctx).
		Preload("Client").Preload("Car").Preload("Status").
		Preload("IssueBranch").Preload("ReturnBranch").
		Order("issue_date DESC, contract_id DESC").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("report contracts: %w", err)
	}
	return out, nil
}

// ReportCars returns every car with its lookups, ordered by brand, model and plate.
func (s *Store) ReportCars(ctx context.Context) ([]models.Car, error) {
	var out []models.Car
	err := s.db.WithContext(ctx).
		Preload("Category").Preload("Status").Preload("Branch").
		Order("brand, model, plate").
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("report cars: %w", err)
	}
	return out, nil
}

type Lookups struct {
	Categories       []models.CarCategory    `json:"categories"`
	CarStatuses      []models.CarStatus      `json:"car_statuses"`
	Roles            []models.Role           `json:"roles"`
	ContractStatuses []models.ContractStatus `json:"contract_statuses"`
	Branches         []models.Branch         `json:"branches"`
	PaymentMethods   []string                `json:"payment_methods"`
}

// Lookups returns the option lists for the record forms.
func (s *Store) Lookups(ctx context.Context) (Lookups, error) {
	out := Lookups{PaymentMethods: models.PaymentMethods}
	db := s.db.WithContext(ctx)
	for _, q := range []struct {
		dest  any
		order string
	}{
		{&out.Categories, "name"},
		{&out.CarStatuses, "status"},
		{&out.Roles, "name"},
		{&out.ContractStatuses, "status"},
		{&out.Branches, "name"},
	} {
		if err := db.Order(q.order).Find(q.dest).Error; err != nil {
			return Lookups{}, fmt.Errorf("lookups: %w", err)
		}
	}
	return out, nil
}
