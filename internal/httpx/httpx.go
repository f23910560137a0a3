// Package httpx holds request helpers shared by the API handlers.
package httpx

import (
	"github.com/gofiber/fiber/v2"
)

// ParamID reads the :id route parameter as a positive integer.
func ParamID(c *fiber.Ctx) (uint, error) {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return 0, fiber.NewError(fiber.StatusBadRequest, "Некорректный идентификатор")
	}
	return uint(id), nil
}

// Bind parses the JSON body into v.
func Bind(c *fiber.Ctx, v any) error {
	if err := c.BodyParser(v); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
	}
	return nil
}
