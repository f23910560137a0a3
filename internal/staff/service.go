// Package staff manages employees and keeps their login credentials in step.
package staff

import (
	"context"
	"errors"
	"strings"

	"rental-backend/internal/accounts"
	"rental-backend/internal/audit"
	"rental-backend/internal/models"
	"rental-backend/internal/store"
	"rental-backend/internal/validation"
)

const (
	MsgPassportTaken = "Сотрудник с таким паспортом уже существует."
	MsgEmailTaken    = "Сотрудник с таким email уже существует."
	MsgUnknownRef    = "Выберите значение из списка."
)

type EmployeeInput struct {
	FullName string `json:"full_name" validate:"required,max=255,fio"`
	Passport string `json:"passport" validate:"required,passport"`
	RoleID   uint   `json:"role_id" validate:"required"`
	BranchID uint   `json:"branch_id" validate:"required"`
	Phone    string `json:"phone" validate:"required,phone_ru"`
	Email    string `json:"email" validate:"required,email,max=255"`
	// Required when the employee has no credential yet, optional otherwise.
	Password string `json:"password" validate:"max=128"`
}

func (in *EmployeeInput) normalize() {
	in.FullName = strings.Join(strings.Fields(in.FullName), " ")
	in.Passport = strings.TrimSpace(in.Passport)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = strings.TrimSpace(in.Email)
}

func (in EmployeeInput) apply(e *models.Employee) {
	e.FullName = in.FullName
	e.Passport = in.Passport
	e.RoleID = in.RoleID
	e.BranchID = in.BranchID
	e.Phone = in.Phone
	e.Email = in.Email
}

type Service struct {
	st          *store.Store
	provisioner *accounts.Provisioner
}

func NewService(st *store.Store, p *accounts.Provisioner) *Service {
	return &Service{st: st, provisioner: p}
}

func validate(ctx context.Context, tx *store.Store, in *EmployeeInput, exceptID uint) error {
	in.normalize()
	errs := validation.Struct(in)

	for _, ref := range []struct {
		field string
		model any
		id    uint
	}{
		{"role_id", &models.Role{}, in.RoleID},
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

	uniq, err := validation.Unique(ctx, tx, &models.Employee{}, exceptID,
		validation.UniqueField{Field: "passport", Column: "passport", Value: in.Passport, Message: MsgPassportTaken},
		validation.UniqueField{Field: "email", Column: "LOWER(email)", Value: models.NormalizeEmail(in.Email), Message: MsgEmailTaken},
	)
	if err != nil {
		return err
	}
	errs.Merge(uniq)
	return errs.Err()
}

// provisioningError turns a missing password into a field error. Constraint violations
// raised while writing the credential map onto the store sentinels.
func provisioningError(err error) error {
	if errors.Is(err, accounts.ErrPasswordRequired) {
		return validation.Field("password", accounts.MsgPasswordRequired)
	}
	return store.Translate(err)
}

func roleName(ctx context.Context, tx *store.Store, id uint) (string, error) {
	var role models.Role
	if err := tx.First(ctx, &role, id); err != nil {
		return "", err
	}
	return role.Name, nil
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Employee, error) {
	var e models.Employee
	if err := s.st.First(ctx, &e, id, "Role", "Branch"); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create stores the employee and its credential in one transaction.
func (s *Service) Create(ctx context.Context, actor audit.Actor, in EmployeeInput) (*models.Employee, error) {
	var emp models.Employee
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		errs := validation.Errors{}
		if err := validate(ctx, tx, &in, 0); err != nil {
			ve, ok := validation.As(err)
			if !ok {
				return err
			}
			errs.Merge(ve)
		}
		// reported with the other field errors, before anything is stored
		if strings.TrimSpace(in.Password) == "" {
			errs.Add("password", accounts.MsgPasswordRequired)
		}
		if err := errs.Err(); err != nil {
			return err
		}

		in.apply(&emp)
		if err := tx.Create(ctx, &emp); err != nil {
			return err
		}
		role, err := roleName(ctx, tx, emp.RoleID)
		if err != nil {
			return err
		}
		if err := s.provisioner.OnCreate(ctx, tx.DB(), &emp, role, in.Password); err != nil {
			return provisioningError(err)
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "employee",
			EntityID:    emp.ID,
			Action:      models.AuditActionCreate,
			Description: "Сотрудник добавлен: " + emp.FullName,
			After:       toResponse(emp),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, emp.ID)
}

// Update saves the employee, moving the credential when the email changes.
func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in EmployeeInput) (*models.Employee, error) {
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		var emp models.Employee
		if err := tx.First(ctx, &emp, id); err != nil {
			return err
		}
		before := toResponse(emp)
		oldEmail := emp.Email

		if err := validate(ctx, tx, &in, id); err != nil {
			return err
		}
		in.apply(&emp)
		if err := tx.Save(ctx, &emp); err != nil {
			return err
		}
		role, err := roleName(ctx, tx, emp.RoleID)
		if err != nil {
			return err
		}
		if err := s.provisioner.OnUpdate(ctx, tx.DB(), oldEmail, &emp, role, in.Password); err != nil {
			return provisioningError(err)
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "employee",
			EntityID:    emp.ID,
			Action:      models.AuditActionUpdate,
			Description: "Сотрудник изменён: " + emp.FullName,
			Before:      before,
			After:       toResponse(emp),
		})
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the employee and its credential; either both go or neither does.
func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.st.Transaction(ctx, func(tx *store.Store) error {
		var emp models.Employee
		if err := tx.First(ctx, &emp, id); err != nil {
			return err
		}
		if err := tx.Delete(ctx, &models.Employee{}, id); err != nil {
			return err
		}
		if err := s.provisioner.OnDelete(ctx, tx.DB(), &emp); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "employee",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Сотрудник удалён: " + emp.FullName,
			Before:      toResponse(emp),
		})
	})
}
