package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"velocity/internal/auth"
	"velocity/internal/config"
	"velocity/internal/logger"
	"velocity/internal/storage"
)

var (
	configPath string

	cfg *config.Config
	log *zap.Logger
)

// @title Velocity Workforce API
// @version 1.0
// @description Workforce and vendor management API: SOW tranches, contractors, purchase orders, invoices, timecards, messages and alerts.
// @host localhost:8080
// @BasePath /
// @schemes http

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "velocity",
	Short:         "Workforce and vendor management API",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		l, err := logger.New(c.Log.Level, c.Log.Development)
		if err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		cfg, log = c, l

		auth.SetSecret(cfg.Auth.JWTSecret)
		auth.SetTokenTTL(cfg.Auth.TokenTTL)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, migrateCmd, readinessCmd, userCmd)
}

func openStorage() (*storage.Storage, error) {
	return storage.NewStorage(cfg.Database.URL, storage.PoolOptions{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, log)
}
