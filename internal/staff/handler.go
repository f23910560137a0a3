package staff

import (
	"rental-backend/internal/auth"
	"rental-backend/internal/httpx"
	"rental-backend/internal/models"
	"rental-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type EmployeeResponse struct {
	ID       uint   `json:"id"`
	FullName string `json:"full_name"`
	Passport string `json:"passport"`
	RoleID   uint   `json:"role_id"`
	Role     string `json:"role,omitempty"`
	BranchID uint   `json:"branch_id"`
	Branch   string `json:"branch,omitempty"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

func toResponse(e models.Employee) EmployeeResponse {
	r := EmployeeResponse{
		ID:       e.ID,
		FullName: e.FullName,
		Passport: e.Passport,
		RoleID:   e.RoleID,
		BranchID: e.BranchID,
		Phone:    e.Phone,
		Email:    e.Email,
	}
	if e.Role != nil {
		r.Role = e.Role.Name
	}
	if e.Branch != nil {
		r.Branch = e.Branch.Name
	}
	return r
}

func ListEmployeesHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := st.ListEmployees(c.UserContext(), store.ParseListQuery(c.Query))
		if err != nil {
			return err
		}
		return c.JSON(store.MapPage(page, toResponse))
	}
}

func GetEmployeeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		e, err := s.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*e))
	}
}

func CreateEmployeeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body EmployeeInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		e, err := s.Create(c.UserContext(), auth.ActorFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*e))
	}
}

func UpdateEmployeeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		var body EmployeeInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		e, err := s.Update(c.UserContext(), auth.ActorFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*e))
	}
}

func DeleteEmployeeHandler(s *Service) fiber.Handler {
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
