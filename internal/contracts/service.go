// Package contracts handles rental contracts and their price snapshot.
package contracts

import (
	"context"
	"errors"
	"time"

	"rental-backend/internal/audit"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"
	"rental-backend/internal/pricing"
	"rental-backend/internal/store"
	"rental-backend/internal/validation"
)

const MsgUnknownRef = "Выберите значение из списка."

type ContractInput struct {
	StatusID       uint   `json:"status_id" validate:"required"`
	ClientID       uint   `json:"client_id" validate:"required"`
	CarID          uint   `json:"car_id" validate:"required"`
	IssueDate      string `json:"issue_date" validate:"required,date"`
	ReturnDate     string `json:"return_date" validate:"required,date"`
	Payment        string `json:"payment" validate:"required,payment"`
	IssueBranchID  uint   `json:"issue_branch_id" validate:"required"`
	ReturnBranchID uint   `json:"return_branch_id" validate:"required"`
}

type Service struct {
	st      *store.Store
	metrics *metrics.Metrics
	loc     *time.Location
	now     func() time.Time
}

func NewService(st *store.Store, m *metrics.Metrics, loc *time.Location) *Service {
	return &Service{st: st, metrics: m, loc: loc, now: time.Now}
}

// Today is the business date used for new contracts and status derivation.
func (s *Service) Today() time.Time {
	return models.Today(s.now(), s.loc)
}

// checked is an input that passed validation, with its dates parsed.
type checked struct {
	ContractInput
	issue, ret time.Time
}

func validate(ctx context.Context, tx *store.Store, in ContractInput) (checked, error) {
	errs := validation.Struct(in)
	out := checked{ContractInput: in}

	if _, bad := errs["issue_date"]; !bad {
		out.issue, _ = models.ParseDate(in.IssueDate)
	}
	if _, bad := errs["return_date"]; !bad {
		out.ret, _ = models.ParseDate(in.ReturnDate)
	}
	if !out.issue.IsZero() && !out.ret.IsZero() {
		errs.Merge(validation.DateOrder(out.issue, out.ret))
	}

	for _, ref := range []struct {
		field string
		model any
		id    uint
	}{
		{"status_id", &models.ContractStatus{}, in.StatusID},
		{"client_id", &models.Client{}, in.ClientID},
		{"car_id", &models.Car{}, in.CarID},
		{"issue_branch_id", &models.Branch{}, in.IssueBranchID},
		{"return_branch_id", &models.Branch{}, in.ReturnBranchID},
	} {
		if ref.id == 0 {
			continue
		}
		ok, err := tx.Exists(ctx, ref.model, ref.id)
		if err != nil {
			return out, err
		}
		if !ok {
			errs.Add(ref.field, MsgUnknownRef)
		}
	}
	return out, errs.Err()
}

// price takes the snapshot from the car's current daily rate.
func price(ctx context.Context, tx *store.Store, c *models.Contract) error {
	var car models.Car
	if err := tx.First(ctx, &car, c.CarID); err != nil {
		return err
	}
	q, err := pricing.Calculate(car.DailyPrice, c.IssueDate, c.ReturnDate)
	if errors.Is(err, pricing.ErrInvalidPeriod) {
		return validation.Form(validation.MsgReturnBeforeIssue)
	}
	if err != nil {
		return err
	}
	c.DailyPrice = q.DailyPrice
	c.TotalAmount = q.TotalAmount
	return nil
}

func (in checked) apply(c *models.Contract) {
	c.StatusID = in.StatusID
	c.ClientID = in.ClientID
	c.CarID = in.CarID
	c.IssueDate = in.issue
	c.ReturnDate = in.ret
	c.Payment = in.Payment
	c.IssueBranchID = in.IssueBranchID
	c.ReturnBranchID = in.ReturnBranchID
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Contract, error) {
	var c models.Contract
	if err := s.st.First(ctx, &c, id, "Client", "Car", "Status", "IssueBranch", "ReturnBranch"); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create prices the contract from the selected car and stores it dated today.
func (s *Service) Create(ctx context.Context, actor audit.Actor, in ContractInput) (*models.Contract, error) {
	var contract models.Contract
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		valid, err := validate(ctx, tx, in)
		if err != nil {
			return err
		}
		valid.apply(&contract)
		contract.CreatedOn = s.Today()
		if err := price(ctx, tx, &contract); err != nil {
			return err
		}
		if err := tx.Create(ctx, &contract); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "contract",
			EntityID:    contract.ID,
			Action:      models.AuditActionCreate,
			Description: "Договор оформлен",
			After:       snapshot(contract),
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordContract("create")
	return s.Get(ctx, contract.ID)
}

// Update re-prices the contract when the car or the period changes. Otherwise the
// stored snapshot is kept even if the car's rate has changed since.
func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in ContractInput) (*models.Contract, error) {
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		var contract models.Contract
		if err := tx.First(ctx, &contract, id); err != nil {
			return err
		}
		before := snapshot(contract)

		valid, err := validate(ctx, tx, in)
		if err != nil {
			return err
		}
		repriced := valid.CarID != contract.CarID ||
			!valid.issue.Equal(models.DateOf(contract.IssueDate)) ||
			!valid.ret.Equal(models.DateOf(contract.ReturnDate))

		valid.apply(&contract)
		if repriced {
			if err := price(ctx, tx, &contract); err != nil {
				return err
			}
		}
		if err := tx.Save(ctx, &contract); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "contract",
			EntityID:    contract.ID,
			Action:      models.AuditActionUpdate,
			Description: "Договор изменён",
			Before:      before,
			After:       snapshot(contract),
		})
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordContract("update")
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		var contract models.Contract
		if err := tx.First(ctx, &contract, id); err != nil {
			return err
		}
		if err := tx.Delete(ctx, &models.Contract{}, id); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "contract",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Договор удалён",
			Before:      snapshot(contract),
		})
	})
	if err != nil {
		return err
	}
	s.metrics.RecordContract("delete")
	return nil
}
