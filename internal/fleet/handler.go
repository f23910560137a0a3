package fleet

import (
	"rental-backend/internal/auth"
	"rental-backend/internal/httpx"
	"rental-backend/internal/models"
	"rental-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type CarResponse struct {
	ID         uint            `json:"id"`
	Plate      string          `json:"plate"`
	VIN        string          `json:"vin"`
	Brand      string          `json:"brand"`
	Model      string          `json:"model"`
	YearMade   int             `json:"year_made"`
	Mileage    int             `json:"mileage"`
	CategoryID uint            `json:"category_id"`
	Category   string          `json:"category,omitempty"`
	StatusID   uint            `json:"status_id"`
	Status     string          `json:"status,omitempty"`
	BranchID   uint            `json:"branch_id"`
	Branch     string          `json:"branch,omitempty"`
	DailyPrice decimal.Decimal `json:"daily_price"`
}

func toResponse(c models.Car) CarResponse {
	r := CarResponse{
		ID:         c.ID,
		Plate:      c.Plate,
		VIN:        c.VIN,
		Brand:      c.Brand,
		Model:      c.Model,
		YearMade:   c.YearMade,
		Mileage:    c.Mileage,
		CategoryID: c.CategoryID,
		StatusID:   c.StatusID,
		BranchID:   c.BranchID,
		DailyPrice: c.DailyPrice,
	}
	if c.Category != nil {
		r.Category = c.Category.Name
	}
	if c.Status != nil {
		r.Status = c.Status.Status
	}
	if c.Branch != nil {
		r.Branch = c.Branch.Name
	}
	return r
}

// GET /api/cars?search=&page=&page_size=
func ListCarsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := st.ListCars(c.UserContext(), store.ParseListQuery(c.Query))
		if err != nil {
			return err
		}
		return c.JSON(store.MapPage(page, toResponse))
	}
}

func GetCarHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		car, err := s.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*car))
	}
}

func CreateCarHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body CarInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		car, err := s.Create(c.UserContext(), auth.ActorFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*car))
	}
}

func UpdateCarHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		var body CarInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		car, err := s.Update(c.UserContext(), auth.ActorFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*car))
	}
}

func DeleteCarHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		if err := s.Delete(c.UserContext(), auth.ActorFrom(c), id); err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/cars/get_price/:id
func GetPriceHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		car, err := s.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"daily_price": car.DailyPrice})
	}
}
