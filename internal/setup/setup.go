// Package setup bootstraps the application dependencies.
package setup

import (
	"context"

	"github.com/pingcrew/pingcrew/internal/database"
	"github.com/pingcrew/pingcrew/internal/setup/config"
	"go.uber.org/zap"
)

// App bundles all core dependencies needed by the bot. Each field represents
// a subsystem that needs initialization and cleanup.
type App struct {
	Config *config.Config  // Application configuration
	Logger *zap.Logger     // Main application logger
	DB     database.Client // Database connection pool
}

// InitializeApp bootstraps all application dependencies in the correct order,
// ensuring each component has its required dependencies available.
func InitializeApp(ctx context.Context) (*App, error) {
	// Load app configuration
	cfg, configDir, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}

	// Logging system is initialized next to capture setup issues
	logger, err := newLogger(&cfg.Debug)
	if err != nil {
		return nil, err
	}

	logger.Info("Loaded configuration", zap.String("configDir", configDir))

	// Initialize database with automatic migrations
	db, err := database.NewConnection(ctx, &cfg.PostgreSQL, logger.Named("database"), true)
	if err != nil {
		return nil, err
	}

	return &App{
		Config: cfg,
		Logger: logger,
		DB:     db,
	}, nil
}

// Cleanup ensures graceful shutdown of all components in reverse
// initialization order. Cleanup errors are logged, not propagated, so every
// component gets a shutdown attempt.
func (a *App) Cleanup() {
	if err := a.DB.Close(); err != nil {
		a.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	_ = a.Logger.Sync()
}
