// main.go
package main

import (
	"log"
	"time"

	"admin-2fa/cmd"
	"admin-2fa/internal/data/repository"
	"admin-2fa/internal/usecase"
	"admin-2fa/internal/wire"
	"admin-2fa/pkg/database"
	"admin-2fa/pkg/notifier"
	"admin-2fa/pkg/utils"

	"go.uber.org/zap"
)

func main() {
	// Load config
	config, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	logger, err := utils.InitLogger(config.App.LogPath, config.App.Debug)
	if err != nil {
		log.Printf("Failed to init logger: %v. Using standard log.", err)
		logger, _ = zap.NewProduction()
	}
	defer logger.Sync()

	logger.Info("Starting application",
		zap.String("app", config.App.Name),
		zap.String("port", config.App.Port),
		zap.Bool("debug", config.App.Debug),
		zap.Bool("direct_return", config.TwoFA.DirectReturn),
	)

	// Connect to database
	db, err := database.InitDB(config.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	logger.Info("Database connected successfully")

	// Initialize all repositories
	repos := repository.NewRepository(db, logger)

	// Outbound code delivery channel
	notif := notifier.NewWhatsApp(config.WhatsApp, logger)

	// Background sweep of expired codes. Pure storage hygiene; validation
	// re-checks expiry on every attempt regardless.
	cleanup := usecase.NewCleanupService(repos.TwoFACode, logger,
		time.Duration(config.Cleanup.IntervalMinutes)*time.Minute)
	cleanup.Start()
	defer cleanup.Stop()

	// Wire all dependencies
	app := wire.Wiring(repos, config, logger, notif)

	// Start server
	logger.Info("Starting HTTP server", zap.String("port", config.App.Port))

	cmd.APIServer(app.Router, config.App.Port)
}
