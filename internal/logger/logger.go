package logger

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ctxLoggerKey = "logger"

// New builds the application logger: JSON in production, console otherwise.
func New(env, level string) (*zap.Logger, error) {
	var cfg zap.Config
	if env == "production" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.OutputPaths = []string{"stdout"}

	lvl, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// Attach stores a request-scoped logger on the fiber context.
func Attach(c *fiber.Ctx, log *zap.Logger) {
	c.Locals(ctxLoggerKey, log)
}

// From returns the request-scoped logger, or fallback if none is attached.
func From(c *fiber.Ctx, fallback *zap.Logger) *zap.Logger {
	if log, ok := c.Locals(ctxLoggerKey).(*zap.Logger); ok && log != nil {
		return log
	}
	if fallback == nil {
		return zap.NewNop()
	}
	return fallback
}
