package clients

import (
	"context"
	"strings"

	"rental-backend/internal/audit"
	"rental-backend/internal/models"
	"rental-backend/internal/store"
	"rental-backend/internal/validation"
)

const MsgPassportTaken = "Клиент с таким паспортом уже существует."

type ClientInput struct {
	FullName  string `json:"full_name" validate:"required,max=255,fio"`
	BirthDate string `json:"birth_date" validate:"required,date"`
	Passport  string `json:"passport" validate:"required,passport"`
	DLNumber  string `json:"dl_number" validate:"required,dl_number"`
	Phone     string `json:"phone" validate:"required,phone_ru"`
	Email     string `json:"email" validate:"required,email,max=255"`
	Address   string `json:"address" validate:"required,max=255"`
}

func (in *ClientInput) normalize() {
	in.FullName = strings.Join(strings.Fields(in.FullName), " ")
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	in.Passport = strings.TrimSpace(in.Passport)
	in.DLNumber = strings.ToUpper(strings.TrimSpace(in.DLNumber))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Email = models.NormalizeEmail(in.Email)
	in.Address = strings.TrimSpace(in.Address)
}

type Service struct {
	st *store.Store
}

func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

func validate(ctx context.Context, tx *store.Store, in *ClientInput, exceptID uint) error {
	in.normalize()
	errs := validation.Struct(in)
	uniq, err := validation.Unique(ctx, tx, &models.Client{}, exceptID,
		validation.UniqueField{Field: "passport", Column: "passport", Value: in.Passport, Message: MsgPassportTaken},
	)
	if err != nil {
		return err
	}
	errs.Merge(uniq)
	return errs.Err()
}

func (in ClientInput) apply(c *models.Client) {
	// validated by the "date" rule
	birth, _ := models.ParseDate(in.BirthDate)

	c.FullName = in.FullName
	c.BirthDate = birth
	c.Passport = in.Passport
	c.DLNumber = in.DLNumber
	c.Phone = in.Phone
	c.Email = in.Email
	c.Address = in.Address
}

func (s *Service) Get(ctx context.Context, id uint) (*models.Client, error) {
	var c models.Client
	if err := s.st.First(ctx, &c, id); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *Service) Create(ctx context.Context, actor audit.Actor, in ClientInput) (*models.Client, error) {
	var client models.Client
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		if err := validate(ctx, tx, &in, 0); err != nil {
			return err
		}
		in.apply(&client)
		if err := tx.Create(ctx, &client); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "client",
			EntityID:    client.ID,
			Action:      models.AuditActionCreate,
			Description: "Клиент добавлен: " + client.FullName,
			After:       toResponse(client),
		})
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Service) Update(ctx context.Context, actor audit.Actor, id uint, in ClientInput) (*models.Client, error) {
	var client models.Client
	err := s.st.Transaction(ctx, func(tx *store.Store) error {
		if err := tx.First(ctx, &client, id); err != nil {
			return err
		}
		before := toResponse(client)
		if err := validate(ctx, tx, &in, id); err != nil {
			return err
		}
		in.apply(&client)
		if err := tx.Save(ctx, &client); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "client",
			EntityID:    client.ID,
			Action:      models.AuditActionUpdate,
			Description: "Клиент изменён: " + client.FullName,
			Before:      before,
			After:       toResponse(client),
		})
	})
	if err != nil {
		return nil, err
	}
	return &client, nil
}

func (s *Service) Delete(ctx context.Context, actor audit.Actor, id uint) error {
	return s.st.Transaction(ctx, func(tx *store.Store) error {
		var client models.Client
		if err := tx.First(ctx, &client, id); err != nil {
			return err
		}
		if err := tx.Delete(ctx, &models.Client{}, id); err != nil {
			return err
		}
		return audit.WriteLog(tx.DB(), audit.LogOptions{
			Actor:       actor,
			EntityType:  "client",
			EntityID:    id,
			Action:      models.AuditActionDelete,
			Description: "Клиент удалён: " + client.FullName,
			Before:      toResponse(client),
		})
	})
}
