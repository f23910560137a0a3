package main

import (
	"fmt"
	"os"

	"rental-backend/internal/config"
	"rental-backend/internal/database"
	"rental-backend/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rental-backend",
		Short: "Vehicle rental back office",
	}
	rootCmd.AddCommand(ServeCmd())
	rootCmd.AddCommand(ReportCmd())
	rootCmd.AddCommand(CreateAdminCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bootstrap loads the configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *zap.Logger, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}
	log, err := logger.New(cfg.AppEnv, cfg.LogLevel)
	if err != nil {
		return nil, nil, nil, err
	}
	for _, w := range cfg.Warnings() {
		log.Warn(w)
	}
	db, err := database.Open(cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}
