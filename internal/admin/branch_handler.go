package admin

import (
	"context"
	"strings"

	"rental-backend/internal/audit"
	"rental-backend/internal/auth"
	"rental-backend/internal/httpx"
	"rental-backend/internal/models"
	"rental-backend/internal/store"
	"rental-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
)

type BranchRequest struct {
	Name     string `json:"name" validate:"required,max=120"`
	Address  string `json:"address" validate:"required,max=200"`
	Contacts string `json:"contacts" validate:"required,max=120"`
}

func (r *BranchRequest) normalize() {
	r.Name = strings.TrimSpace(r.Name)
	r.Address = strings.TrimSpace(r.Address)
	r.Contacts = strings.TrimSpace(r.Contacts)
}

const msgBranchTaken = "Филиал с таким названием уже существует."

func validateBranch(ctx context.Context, st *store.Store, body *BranchRequest, exceptID uint) error {
	body.normalize()
	errs := validation.Struct(body)
	uniq, err := validation.Unique(ctx, st, &models.Branch{}, exceptID,
		validation.UniqueField{Field: "name", Column: "name", Value: body.Name, Message: msgBranchTaken},
	)
	if err != nil {
		return err
	}
	errs.Merge(uniq)
	return errs.Err()
}

// ----------------------------------------
// BRANCH CRUD
// ----------------------------------------

func ListBranchesHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := st.ListBranches(c.UserContext(), store.ParseListQuery(c.Query))
		if err != nil {
			return err
		}
		return c.JSON(page)
	}
}

func GetBranchHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		var branch models.Branch
		if err := st.First(c.UserContext(), &branch, id); err != nil {
			return err
		}
		return c.JSON(branch)
	}
}

func CreateBranchHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body BranchRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		actor := auth.ActorFrom(c)

		var branch models.Branch
		err := st.Transaction(c.UserContext(), func(tx *store.Store) error {
			if err := validateBranch(c.UserContext(), tx, &body, 0); err != nil {
				return err
			}
			branch = models.Branch{Name: body.Name, Address: body.Address, Contacts: body.Contacts}
			if err := tx.Create(c.UserContext(), &branch); err != nil {
				return err
			}
			return audit.WriteLog(tx.DB(), audit.LogOptions{
				Actor:       actor,
				EntityType:  "branch",
				EntityID:    branch.ID,
				Action:      models.AuditActionCreate,
				Description: "Филиал создан: " + branch.Name,
				After:       branch,
			})
		})
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(branch)
	}
}

func UpdateBranchHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		var body BranchRequest
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		actor := auth.ActorFrom(c)

		var branch models.Branch
		err = st.Transaction(c.UserContext(), func(tx *store.Store) error {
			if err := tx.First(c.UserContext(), &branch, id); err != nil {
				return err
			}
			before := branch
			if err := validateBranch(c.UserContext(), tx, &body, id); err != nil {
				return err
			}
			branch.Name = body.Name
			branch.Address = body.Address
			branch.Contacts = body.Contacts
			if err := tx.Save(c.UserContext(), &branch); err != nil {
				return err
			}
			return audit.WriteLog(tx.DB(), audit.LogOptions{
				Actor:       actor,
				EntityType:  "branch",
				EntityID:    branch.ID,
				Action:      models.AuditActionUpdate,
				Description: "Филиал изменён: " + branch.Name,
				Before:      before,
				After:       branch,
			})
		})
		if err != nil {
			return err
		}
		return c.JSON(branch)
	}
}

func DeleteBranchHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		actor := auth.ActorFrom(c)

		err = st.Transaction(c.UserContext(), func(tx *store.Store) error {
			var branch models.Branch
			if err := tx.First(c.UserContext(), &branch, id); err != nil {
				return err
			}
			if err := tx.Delete(c.UserContext(), &models.Branch{}, id); err != nil {
				return err
			}
			return audit.WriteLog(tx.DB(), audit.LogOptions{
				Actor:       actor,
				EntityType:  "branch",
				EntityID:    id,
				Action:      models.AuditActionDelete,
				Description: "Филиал удалён: " + branch.Name,
				Before:      branch,
			})
		})
		if err != nil {
			return err
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/lookups
func LookupsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		l, err := st.Lookups(c.UserContext())
		if err != nil {
			return err
		}
		return c.JSON(l)
	}
}
