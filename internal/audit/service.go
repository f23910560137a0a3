package audit

import (
	"encoding/json"
	"fmt"

	"rental-backend/internal/models"

	"gorm.io/gorm"
)

// Actor is the user a change is attributed to.
type Actor struct {
	UserID   *uint
	UserName string
}

type LogOptions struct {
	Actor       Actor
	EntityType  string
	EntityID    uint
	Action      models.AuditAction
	Description string
	Before      any
	After       any
}

// WriteLog appends an audit row using tx, so it commits or rolls back with the change.
func WriteLog(tx *gorm.DB, opts LogOptions) error {
	before, err := snapshot(opts.Before)
	if err != nil {
		return err
	}
	after, err := snapshot(opts.After)
	if err != nil {
		return err
	}

	log := models.AuditLog{
		UserID:      opts.Actor.UserID,
		UserName:    opts.Actor.UserName,
		EntityType:  opts.EntityType,
		EntityID:    opts.EntityID,
		Action:      opts.Action,
		Description: opts.Description,
		BeforeData:  before,
		AfterData:   after,
	}

	if err := tx.Create(&log).Error; err != nil {
		return fmt.Errorf("write audit log: %w", err)
	}
	return nil
}

// snapshot encodes v for a jsonb column, which takes the literal null rather than "".
func snapshot(v any) (string, error) {
	if v == nil {
		return "null", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("encode audit snapshot: %w", err)
	}
	return string(b), nil
}
