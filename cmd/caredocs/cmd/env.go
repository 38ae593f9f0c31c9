package cmd

import (
	"context"
	"os"

	"github.com/caredocs/caredocs/internal/app"
	"github.com/caredocs/caredocs/internal/config"
	"github.com/caredocs/caredocs/internal/db"
	"github.com/caredocs/caredocs/internal/logger"
	"github.com/jmoiron/sqlx"
)

// loadConfig reads configuration and sends logs to stderr so stdout stays
// usable in scripts.
func loadConfig() *config.Config {
	cfg := config.Load()
	logger.InitWriter(os.Stderr, cfg.IsDevelopment(), "")
	return cfg
}

func openDB(cfg *config.Config) (*sqlx.DB, error) {
	return db.Init(cfg.DBDriver, cfg.DBConnection)
}

func openApp(ctx context.Context) (*app.App, error) {
	return app.New(ctx, loadConfig(), false)
}
