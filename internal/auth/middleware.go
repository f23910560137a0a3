package auth

import (
	"errors"
	"strings"

	"rental-backend/internal/audit"
	"rental-backend/internal/logger"
	"rental-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	CookieName = "session"

	ctxUserKey    = "user"
	ctxSessionKey = "session_id"
)

// Middleware authenticates the request by session cookie or bearer token and loads
// the active user.
func Middleware(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr := tokenFrom(c)
		if tokenStr == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Требуется вход в систему")
		}

		claims, err := ParseToken(s.Secret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Сессия недействительна или истекла")
		}

		userID, err := s.Sessions.Lookup(c.UserContext(), claims.ID)
		if errors.Is(err, ErrSessionNotFound) || (err == nil && userID != claims.UserID) {
			return fiber.NewError(fiber.StatusUnauthorized, "Сессия недействительна или истекла")
		}
		if err != nil {
			return err
		}

		var user models.User
		if err := s.DB.WithContext(c.UserContext()).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fiber.NewError(fiber.StatusUnauthorized, "Сессия недействительна или истекла")
			}
			return err
		}
		if !user.IsActive {
			return fiber.NewError(fiber.StatusUnauthorized, "Учётная запись отключена")
		}

		c.Locals(ctxUserKey, &user)
		c.Locals(ctxSessionKey, claims.ID)
		logger.Attach(c, logger.From(c, nil).With(zap.Uint("user_id", user.ID)))
		return c.Next()
	}
}

// RequireStaff lets only staff users through.
func RequireStaff() fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil || !user.IsStaff {
			return fiber.NewError(fiber.StatusForbidden, "Недостаточно прав для этого действия")
		}
		return c.Next()
	}
}

// CurrentUser returns the authenticated user, or nil outside the middleware.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(ctxUserKey).(*models.User)
	return user
}

// ActorFrom attributes audit rows to the authenticated user.
func ActorFrom(c *fiber.Ctx) audit.Actor {
	user := CurrentUser(c)
	if user == nil {
		return audit.Actor{UserName: "system"}
	}
	id := user.ID
	return audit.Actor{UserID: &id, UserName: user.Email}
}

func tokenFrom(c *fiber.Ctx) string {
	if v := c.Cookies(CookieName); v != "" {
		return v
	}
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
