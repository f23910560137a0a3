// Package clients serves the client card index.
package clients

import (
	"rental-backend/internal/auth"
	"rental-backend/internal/httpx"
	"rental-backend/internal/models"
	"rental-backend/internal/store"

	"github.com/gofiber/fiber/v2"
)

type ClientResponse struct {
	ID        uint   `json:"id"`
	FullName  string `json:"full_name"`
	BirthDate string `json:"birth_date"`
	Passport  string `json:"passport"`
	DLNumber  string `json:"dl_number"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	Address   string `json:"address"`
}

func toResponse(c models.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID,
		FullName:  c.FullName,
		BirthDate: c.BirthDate.Format(models.DateLayout),
		Passport:  c.Passport,
		DLNumber:  c.DLNumber,
		Phone:     c.Phone,
		Email:     c.Email,
		Address:   c.Address,
	}
}

// GET /api/clients?search=&sort=name_asc|name_desc&page=
func ListClientsHandler(st *store.Store) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := st.ListClients(c.UserContext(), store.ParseListQuery(c.Query))
		if err != nil {
			return err
		}
		return c.JSON(store.MapPage(page, toResponse))
	}
}

func GetClientHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		client, err := s.Get(c.UserContext(), id)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*client))
	}
}

func CreateClientHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body ClientInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		client, err := s.Create(c.UserContext(), auth.ActorFrom(c), body)
		if err != nil {
			return err
		}
		return c.Status(fiber.StatusCreated).JSON(toResponse(*client))
	}
}

func UpdateClientHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := httpx.ParamID(c)
		if err != nil {
			return err
		}
		var body ClientInput
		if err := httpx.Bind(c, &body); err != nil {
			return err
		}
		client, err := s.Update(c.UserContext(), auth.ActorFrom(c), id, body)
		if err != nil {
			return err
		}
		return c.JSON(toResponse(*client))
	}
}

func DeleteClientHandler(s *Service) fiber.Handler {
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
