package contracts

import (
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/httpx"
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"
	"rental-backend/internal/report"
	"rental-backend/internal/store"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type ContractResponse struct {
	ID             uint            `json:"id"`
	StatusID       uint            `json:"status_id"`
	Status         string          `json:"status,omitempty"`
	StatusText     string          `json:"status_text,omitempty"`
	ClientID       uint            `json:"client_id"`
	Client         string          `json:"client,omitempty"`
	CarID          uint            `json:"car_id"`
	Car            string          `json:"car,omitempty"`
	CreatedAt      string          `json:"created_at"`
	IssueDate      string          `json:"issue_date"`
	ReturnDate     string          `json:"return_date"`
	Days           int             `json:"days"`
	Payment        string          `json:"payment"`
	IssueBranchID  uint            `json:"issue_branch_id"`
	IssueBranch    string          `json:"issue_branch,omitempty"`
	ReturnBranchID uint            `json:"return_branch_id"`
	ReturnBranch   string          `json:"return_branch,omitempty"`
	DailyPrice     decimal.Decimal `json:"daily_price"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
}

// snapshot is the audit form of a contract: ids and stored values only.
func snapshot(c models.Contract) ContractResponse {
	return ContractResponse{
		ID:             c.ID,
		StatusID:       c.StatusID,
		ClientID:       c.ClientID,
		CarID:          c.CarID,
		CreatedAt:      c.CreatedOn.Format(models.DateLayout),
		IssueDate:      c.IssueDate.Format(models.DateLayout),
		ReturnDate:     c.ReturnDate.Format(models.DateLayout),
		Days:           pricing.Days(c.IssueDate, c.ReturnDate),
		Payment:        c.Payment,
		IssueBranchID:  c.IssueBranchID,
		ReturnBranchID: c.ReturnBranchID,
		DailyPrice:     c.DailyPrice,
		TotalAmount:    c.TotalAmount,
	}
}

func toResponse(c models.Contract, today time.Time) ContractResponse {
	r := snapshot(c)
	if c.Status != nil {
		r.Status = c.Status.Status
		r.StatusText = report.ContractStatusText(c.Status.Status, c.ReturnDate, today)
	}
	if c.Client != nil {
		r.Client = c.Client.FullName
	}
	if c.Car != nil {
		r.Car = c.Car.Label()
	}
	if c.IssueBranch != nil {
		r.IssueBranch = c.IssueBranch.Name
	}
	if c.ReturnBranch != nil {
		r.ReturnBranch = c.ReturnBranch.Name
	}
	return r
}

// GET /api/contracts?search=&sort=issue_desc|issue_asc&page=
func ListContractsHandler(st *store.Store, s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := st.ListContracts(c.UserContext(), store.ParseListQuery(c.Query))
		if err != nil {
			return err
		}
		today := s.Today()
		return c.JSON(store.MapPage(page, func(ct models.Contract) ContractResponse {
			return toResponse(ct, today)
		}))
	}
}

func GetContractHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		ct, err := s.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*ct, s.Today()))
	}
}

func CreateContractHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ContractInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		ct, err := s.Create(c.UserContext(), auth.ActorFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*ct, s.Today()))
	}
}

func UpdateContractHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		var body ContractInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		ct, err := s.Update(c.UserContext(), auth.ActorFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*ct, s.Today()))
	}
}

func DeleteContractHandler(s *Service) fiber.Handler {
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
