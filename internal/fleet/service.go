// Package fleet manages the car park.
package fleet

import (
	"context"
	"strings"
	"time"

	"rental-backend/internal/audit"
	"rental-backend/internal/models"
	"rental-backend/internal/store"
	"rental-backend/internal/validation"

	"github.com/shopspring/decimal"
)

const (
	MsgPlateTaken = "Автомобиль с таким госномером уже существует."
	MsgVINTaken   = "Автомобиль с таким VIN уже существует."
	MsgUnknownRef = "Выберите значение из списка."
	MsgYearRange  = "Год выпуска должен быть от 1950 до следующего года."
)

const minYear = 1950

type CarInput struct {
	Plate      string          `json:"plate" validate:"required,plate_ru"`
	VIN        string          `json:"vin" validate:"required,vin"`
	Brand      string          `json:"brand" validate:"required,max=50"`
	Model      string          `json:"model" validate:"required,max=50"`
	YearMade   int             `json:"year_made" validate:"required"`
	Mileage    int             `json:"mileage" validate:"gte=0"`
	CategoryID uint            `json:"category_id" validate:"required"`
	StatusID   uint            `json:"status_id" validate:"required"`
	BranchID   uint            `json:"branch_id" validate:"required"`
	DailyPrice decimal.Decimal `json:"daily_price" validate:"gt=0"`
}

func (in *CarInput) normalize() {
	in.Plate = strings.ToUpper(strings.TrimSpace(in.Plate))
	in.VIN = strings.ToUpper(strings.TrimSpace(in.VIN))
	in.Brand = strings.TrimSpace(in.Brand)
	in.Model = strings.TrimSpace(in.Model)
}

func (in CarInput) apply(car *models.Car) {
	car.Plate = in.Plate
	car.VIN = in.VIN
	car.Brand = in.Brand
	car.Model = in.Model
	car.YearMade = in.YearMade
	car.Mileage = in.Mileage
	car.CategoryID = in.CategoryID
	car.StatusID = in.StatusID
	car.BranchID = in.BranchID
	car.DailyPrice = in.DailyPrice.Round(2)
}

type Service struct {
	st  *store.Store
	now func() time.Time
}

func NewService(st *store.Store) *Service {
	return &Service{st: st, now: time.Now}
}

func (s *Service) validate(ctx context.Context, tx *store.Store, in *CarInput, exceptID uint) error {
	in.normalize()
	errs := validation.Struct(in)

	if in.YearMade != 0 && (in.YearMade < minYear || in.YearMade > s.now().Year()+1) {
		errs.Add("year_made", MsgYearRange)
	}

	for _, ref := range []struct {
		field string
		model any
		id    uint
	}{
		{"category_id", &models.CarCategory{}, in.CategoryID},
		{"status_id", &models.CarStatus{}, in.StatusID},
		{"branch_id", &models.Branch{}, in.BranchID},
	} {
		if ref.id == 0 {
			continue
		}
		ok, err := tx.Exists(ctx, ref.model, ref.id)
		if err != nil {
			return err
		}
		if !ok {
			errs.Add(ref.field, MsgUnknownRef)
		}
	}

	uniq, err := validation.Unique(ctx, tx, &models.Car{}, exceptID,
		validation.UniqueField{Field: "plate", Column: "plate", Value: in.Plate, Message: MsgPlateTaken},
		validation.UniqueField{Field: "vin", Column: "vin", Value: in.VIN, Message: MsgVINTaken},
	)
	if err != nil {
		return err
	}
	errs.Merge(uniq)
	return errs.Err()
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Car, error) {
	var car models.Car
	if err := s.st.First(ctx, &car, id, "Category", "Status", "Branch"); err != nil {
		return nil, err
	}
	return &car, nil
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in CarInput) (*models.Car, error) {
	var car models.Car
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		if err := s.validate(ctx, tx, &in, 0); err != nil {
			return err
		}
		in.apply(&car)
		if err := tx.Create(ctx, &car); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "car",
			EntityID:    car.ID,
			Action:      models.AuditActionCreate,
			Description: "Автомобиль добавлен: " + car.Label(),
			After:       toResponse(car),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, car.ID)
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in CarInput) (*models.Car, error) {
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		var car models.Car
		if err := tx.First(ctx, &car, id); err != nil {
			return err
		}
		before := toResponse(car)
		if err := s.validate(ctx, tx, &in, id); err != nil {
			return err
		}
		in.apply(&car)
		if err := tx.Save(ctx, &car); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "car",
			EntityID:    car.ID,
			Action:      models.AuditActionUpdate,
			Description: "Автомобиль изменён: " + car.Label(),
			Before:      before,
			After:       toResponse(car),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a car. Cars referenced by contracts are kept and store.ErrInUse is returned.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.st.Transaction(ctx, func(tx *store.Store) error {
		var car models.Car
		if err := tx.First(ctx, &car, id); err != nil {
			return err
		}
		if err := tx.Delete(ctx, &models.Car{}, id); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "car",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Автомобиль удалён: " + car.Label(),
			Before:      toResponse(car),
		})
	})
}
