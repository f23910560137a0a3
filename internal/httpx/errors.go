package httpx

import (
	"errors"

	"rental-backend/internal/logger"
	"rental-backend/internal/store"
	"rental-backend/internal/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	MsgDuplicate = "Проверьте уникальные поля: паспорт, VIN, госномер, email."
	MsgInUse     = "Запись используется в других документах"
	MsgNotFound  = "Запись не найдена"
	MsgInternal  = "Внутренняя ошибка сервера"
)

// ErrorResponse is the body of every non-validation error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ValidationResponse carries field errors; form-level messages use the "__all__" key.
type ValidationResponse struct {
	Errors validation.Errors `json:"errors"`
}

// ErrorHandler maps domain errors onto HTTP statuses. Unexpected errors are logged
// and answered with a generic message.
func ErrorHandler(fallback *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if ve, ok := validation.As(err); ok {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(ValidationResponse{Errors: ve})
		}

		var fe *fiber.Error
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: MsgNotFound})
		case errors.Is(err, store.ErrDuplicate):
			return c.Status(fiber.StatusConflict).JSON(ValidationResponse{Errors: validation.Form(MsgDuplicate)})
		case errors.Is(err, store.ErrInUse):
			return c.Status(fiber.StatusConflict).JSON(ValidationResponse{Errors: validation.Form(MsgInUse)})
		case errors.As(err, &fe):
			return c.Status(fe.Code).JSON(ErrorResponse{Error: fe.Message})
		}

		logger.From(c, fallback).Error("request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: MsgInternal})
	}
}
