package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"rental-backend/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrSessionNotFound = errors.New("auth: session not found or expired")

// SessionStore keeps server-side sessions so a logout revokes the token.
type SessionStore interface {
	Create(ctx context.Context, userID uint, ttl time.Duration) (string, error)
	// Lookup returns the owner of a live session, or ErrSessionNotFound.
	Lookup(ctx context.Context, id string) (uint, error)
	Revoke(ctx context.Context, id string) error
}

// DBStore keeps sessions in the sessions table.
type DBStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewDBStore(db *gorm.DB) *DBStore {
	return &DBStore{db: db, now: time.Now}
}

func (s *DBStore) Create(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	sess := models.Session{
		ID:        uuid.NewString(),
		UserID:    userID,
		ExpiresAt: s.now().UTC().Add(ttl),
	}
	if err := s.db.WithContext(ctx).Create(&sess).Error; err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return sess.ID, nil
}

func (s *DBStore) Lookup(ctx context.Context, id string) (uint, error) {
	var sess models.Session
	err := s.db.WithContext(ctx).Where("id = ? AND expires_at > ?", id, s.now().UTC()).First(&sess).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	return sess.UserID, nil
}

func (s *DBStore) Revoke(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Session{}).Error; err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// Purge deletes expired sessions and returns how many were removed.
func (s *DBStore) Purge(ctx context.Context) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at <= ?", s.now().UTC()).Delete(&models.Session{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge sessions: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// StartPurge runs Purge on the given cron schedule until the returned cron is stopped.
func StartPurge(s *DBStore, schedule string, log *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		n, err := s.Purge(context.Background())
		if err != nil {
			log.Error("session purge failed", zap.Error(err))
			return
		}
		if n > 0 {
			log.Info("expired sessions purged", zap.Int64("count", n))
		}
	})
	if err != nil {
		return nil, fmt.Errorf("schedule session purge: %w", err)
	}
	c.Start()
	return c, nil
}

// RedisStore keeps sessions as expiring keys; Redis drops them on its own.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: "session:"}
}

func (s *RedisStore) Create(ctx context.Context, userID uint, ttl time.Duration) (string, error) {
	id := uuid.NewString()
	if err := s.rdb.Set(ctx, s.prefix+id, userID, ttl).Err(); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

func (s *RedisStore) Lookup(ctx context.Context, id string) (uint, error) {
	v, err := s.rdb.Get(ctx, s.prefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return 0, ErrSessionNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("lookup session: %w", err)
	}
	userID, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("lookup session: bad value %q", v)
	}
	return uint(userID), nil
}

func (s *RedisStore) Revoke(ctx context.Context, id string) error {
	if err := s.rdb.Del(ctx, s.prefix+id).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

// ConnectRedis opens a client and checks the connection.
func ConnectRedis(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return rdb, nil
}
