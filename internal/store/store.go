package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate value in a unique field")
	ErrInUse     = errors.New("record is referenced by other records")
)

// Store wraps a GORM handle. Bind it to a transaction with WithTx.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *gorm.DB { return s.db }

func (s *Store) WithTx(tx *gorm.DB) *Store {
	return &Store{db: tx}
}

// Transaction runs fn with a store bound to a single database transaction.
func (s *Store) Transaction(ctx context.Context, fn func(tx *Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(s.WithTx(tx))
	})
}

// First loads a record by primary key into dest, preloading the named associations.
func (s *Store) First(ctx context.Context, dest any, id uint, preloads ...string) error {
	q := s.db.WithContext(ctx)
	for _, p := range preloads {
		q = q.Preload(p)
	}
	if err := q.First(dest, id).Error; err != nil {
		return Translate(err)
	}
	return nil
}

// Create inserts v without touching its associations.
func (s *Store) Create(ctx context.Context, v any) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(v).Error; err != nil {
		return Translate(err)
	}
	return nil
}

// Save updates all columns of v without touching its associations.
func (s *Store) Save(ctx context.Context, v any) error {
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Save(v).Error; err != nil {
		return Translate(err)
	}
	return nil
}

// Delete removes the row of model with the given primary key.
func (s *Store) Delete(ctx context.Context, model any, id uint) error {
	res := s.db.WithContext(ctx).Delete(model, id)
	if res.Error != nil {
		return Translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Exists reports whether a row of model with the primary key id exists.
func (s *Store) Exists(ctx context.Context, model any, id uint) (bool, error) {
	pk, err := s.primaryKey(model)
	if err != nil {
		return false, err
	}
	var n int64
	if err := s.db.WithContext(ctx).Model(model).Where(pk+" = ?", id).Count(&n).Error; err != nil {
		return false, fmt.Errorf("exists: %w", err)
	}
	return n > 0, nil
}

// Taken reports whether another row of model already holds value in column.
// column is trusted SQL and may be an expression such as LOWER(email).
func (s *Store) Taken(ctx context.Context, model any, column, value string, exceptID uint) (bool, error) {
	pk, err := s.primaryKey(model)
	if err != nil {
		return false, err
	}
	q := s.db.WithContext(ctx).Model(model).Where(column+" = ?", value)
	if exceptID != 0 {
		q = q.Where(pk+" <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fmt.Errorf("unique lookup %s: %w", column, err)
	}
	return n > 0, nil
}

func (s *Store) primaryKey(model any) (string, error) {
	stmt := &gorm.Statement{DB: s.db}
	if err := stmt.Parse(model); err != nil {
		return "", fmt.Errorf("parse model: %w", err)
	}
	if stmt.Schema.PrioritizedPrimaryField == nil {
		return "", fmt.Errorf("model %s has no primary key", stmt.Schema.Name)
	}
	return stmt.Schema.Table + "." + stmt.Schema.PrioritizedPrimaryField.DBName, nil
}

// Translate maps driver errors onto the package sentinels.
func Translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%w: %v", ErrInUse, err)
	}

	// drivers that do not translate their errors
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"):
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	case strings.Contains(msg, "foreign key constraint"):
		return fmt.Errorf("%w: %v", ErrInUse, err)
	}
	return err
}
