package accounts

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rental-backend/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const MsgPasswordRequired = "Пароль обязателен для создания пользователя"

var ErrPasswordRequired = errors.New("accounts: password required to create a credential")

// IsStaffRole grants administrative rights to roles whose name mentions an administrator.
func IsStaffRole(roleName string) bool {
	r := strings.ToLower(strings.TrimSpace(roleName))
	return strings.Contains(r, "админ") || strings.Contains(r, "admin")
}

// Provisioner keeps login credentials in step with employee records. Every method runs
// on the caller's transaction.
type Provisioner struct {
	cost int
}

func NewProvisioner(cost int) *Provisioner {
	if cost < bcrypt.MinCost {
		cost = bcrypt.DefaultCost
	}
	return &Provisioner{cost: cost}
}

// OnCreate creates the credential of a newly created employee. A credential already
// stored under the same username is adopted: its password and privilege are replaced.
func (p *Provisioner) OnCreate(ctx context.Context, tx *gorm.DB, e *models.Employee, roleName, password string) error {
	password = strings.TrimSpace(password)
	if password == "" {
		return ErrPasswordRequired
	}
	username := models.NormalizeEmail(e.Email)

	user, err := findUser(ctx, tx, username)
	if err != nil {
		return err
	}
	if user == nil {
		user = &models.User{Username: username}
	}
	return p.save(ctx, tx, user, username, roleName, password)
}

// OnUpdate moves the credential to the employee's new email when it changed, refreshes
// its privileges and replaces the password only when one is supplied. A credential
// already stored under the new email is adopted and the old one is removed.
func (p *Provisioner) OnUpdate(ctx context.Context, tx *gorm.DB, oldEmail string, e *models.Employee, roleName, password string) error {
	oldUsername := models.NormalizeEmail(oldEmail)
	newUsername := models.NormalizeEmail(e.Email)
	password = strings.TrimSpace(password)

	user, err := findUser(ctx, tx, newUsername)
	if err != nil {
		return err
	}

	if oldUsername != newUsername {
		old, err := findUser(ctx, tx, oldUsername)
		if err != nil {
			return err
		}
		switch {
		case old == nil:
		case user == nil:
			user = old
		default:
			if err := tx.WithContext(ctx).Delete(old).Error; err != nil {
				return fmt.Errorf("remove credential %s: %w", oldUsername, err)
			}
		}
	}

	if user == nil {
		if password == "" {
			return ErrPasswordRequired
		}
		user = &models.User{}
	}
	return p.save(ctx, tx, user, newUsername, roleName, password)
}

// OnDelete removes the credential keyed by the employee's current email.
func (p *Provisioner) OnDelete(ctx context.Context, tx *gorm.DB, e *models.Employee) error {
	username := models.NormalizeEmail(e.Email)
	if err := tx.WithContext(ctx).Where("username = ?", username).Delete(&models.User{}).Error; err != nil {
		return fmt.Errorf("delete credential %s: %w", username, err)
	}
	return nil
}

// EnsureStaff creates or resets a standalone staff credential that no employee owns,
// used to bootstrap the first administrator.
func (p *Provisioner) EnsureStaff(ctx context.Context, tx *gorm.DB, email, password string) (*models.User, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return nil, ErrPasswordRequired
	}
	username := models.NormalizeEmail(email)

	user, err := findUser(ctx, tx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		user = &models.User{}
	}
	if err := p.save(ctx, tx, user, username, "admin", password); err != nil {
		return nil, err
	}
	return user, nil
}

func (p *Provisioner) save(ctx context.Context, tx *gorm.DB, user *models.User, username, roleName, password string) error {
	user.Username = username
	user.Email = username
	user.IsActive = true
	user.IsStaff = IsStaffRole(roleName)

	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	if err := tx.WithContext(ctx).Save(user).Error; err != nil {
		return fmt.Errorf("save credential %s: %w", username, err)
	}
	return nil
}

func findUser(ctx context.Context, tx *gorm.DB, username string) (*models.User, error) {
	var user models.User
	err := tx.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find credential %s: %w", username, err)
	}
	return &user, nil
}
