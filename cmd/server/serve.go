package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"rental-backend/internal/auth"
	"rental-backend/internal/config"
	"rental-backend/internal/metrics"
	"rental-backend/internal/server"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func ServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, db, err := bootstrap()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			sessions, cleanup, err := sessionStore(ctx, cfg, db, log)
			if err != nil {
				return err
			}
			defer cleanup()

			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

			app := server.New(server.Deps{
				Config:   cfg,
				DB:       db,
				Log:      log,
				Sessions: sessions,
				Registry: reg,
				Metrics:  metrics.New(reg),
			})

			errCh := make(chan error, 1)
			go func() {
				log.Info("server started", zap.String("port", cfg.HTTPPort))
				errCh <- app.Listen(":" + cfg.HTTPPort)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
				return err
			}
			return nil
		},
	}
}

// sessionStore prefers Redis and falls back to the sessions table with an hourly purge.
func sessionStore(ctx context.Context, cfg *config.Config, db *gorm.DB, log *zap.Logger) (auth.SessionStore, func(), error) {
	if cfg.RedisAddr != "" {
		rdb, err := auth.ConnectRedis(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		log.Info("sessions stored in redis", zap.String("addr", cfg.RedisAddr))
		return auth.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil
	}

	store := auth.NewDBStore(db)
	c, err := auth.StartPurge(store, "@hourly", log)
	if err != nil {
		return nil, nil, err
	}
	return store, func() { <-c.Stop().Done() }, nil
}
