package auth

import (
	"errors"
	"strings"
	"time"

	"rental-backend/internal/logger"
	"rental-backend/internal/metrics"
	"rental-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const msgBadCredentials = "Неверный email или пароль"

// Service holds what the login flow and the middleware need.
type Service struct {
	DB           *gorm.DB
	Sessions     SessionStore
	Secret       string
	TTL          time.Duration
	SecureCookie bool
	Metrics      *metrics.Metrics
	Log          *zap.Logger
	Now          func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserResponse struct {
	ID        uint       `json:"id"`
	Email     string     `json:"email"`
	IsStaff   bool       `json:"is_staff"`
	LastLogin *time.Time `json:"last_login"`

	FullName string `json:"full_name,omitempty"`
	Role     string `json:"role,omitempty"`
	Branch   string `json:"branch,omitempty"`
}

// POST /api/auth/login
func LoginHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "Некорректное тело запроса")
		}
		ctx := c.UserContext()
		log := logger.From(c, s.Log)

		username := models.NormalizeEmail(body.Email)
		// credentials are provisioned from the trimmed password
		password := strings.TrimSpace(body.Password)

		var user models.User
		err := s.DB.WithContext(ctx).Where("username = ?", username).First(&user).Error
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		if err != nil || !user.IsActive ||
			bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
			s.Metrics.RecordLogin(false)
			log.Info("login rejected", zap.String("username", username))
			return fiber.NewError(fiber.StatusUnauthorized, msgBadCredentials)
		}

		now := s.now()
		sessionID, err := s.Sessions.Create(ctx, user.ID, s.TTL)
		if err != nil {
			return err
		}
		token, err := GenerateToken(s.Secret, &user, sessionID, now, s.TTL)
		if err != nil {
			return err
		}

		if err := s.DB.WithContext(ctx).Model(&user).Update("last_login", now).Error; err != nil {
			return err
		}
		user.LastLogin = &now
		s.Metrics.RecordLogin(true)

		c.Cookie(&fiber.Cookie{
			Name:     CookieName,
			Value:    token,
			Path:     "/",
			Expires:  now.Add(s.TTL),
			HTTPOnly: true,
			Secure:   s.SecureCookie,
			SameSite: fiber.CookieSameSiteLaxMode,
		})

		return c.JSON(fiber.Map{
			"token": token,
			"user":  userResponse(&user),
		})
	}
}

// POST /api/auth/logout
func LogoutHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if id, ok := c.Locals(ctxSessionKey).(string); ok && id != "" {
			if err := s.Sessions.Revoke(c.UserContext(), id); err != nil {
				return err
			}
		}
		c.ClearCookie(CookieName)
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GET /api/auth/me
func MeHandler(s *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Требуется вход в систему")
		}
		resp := userResponse(user)

		// employee card, if the credential belongs to one
		var emp models.Employee
		err := s.DB.WithContext(c.UserContext()).
			Preload("Role").Preload("Branch").
			Where("LOWER(email) = ?", user.Username).
			First(&emp).Error
		if err == nil {
			resp.FullName = emp.FullName
			if emp.Role != nil {
				resp.Role = emp.Role.Name
			}
			if emp.Branch != nil {
				resp.Branch = emp.Branch.Name
			}
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		return c.JSON(resp)
	}
}

func userResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		IsStaff:   u.IsStaff,
		LastLogin: u.LastLogin,
	}
}
