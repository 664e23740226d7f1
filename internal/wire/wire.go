// internal/wire/wire.go
package wire

import (
	"encoding/json"
	"net/http"
	"time"

	"admin-2fa/internal/adaptor"
	"admin-2fa/internal/data/repository"
	"admin-2fa/internal/usecase"
	"admin-2fa/pkg/middleware"
	"admin-2fa/pkg/notifier"
	"admin-2fa/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// App holds the wired dependencies
type App struct {
	Router *chi.Mux
}

// Wiring initializes services, handlers and routes
func Wiring(repo *repository.Repository, config *utils.Config, logger *zap.Logger, notif notifier.Notifier) *App {
	service := usecase.NewService(repo, config, logger, notif)
	handler := adaptor.NewHandler(service, logger)

	router := setupRouter(handler, logger)

	return &App{
		Router: router,
	}
}

// setupRouter configures the Chi router
func setupRouter(handler *adaptor.Handler, logger *zap.Logger) *chi.Mux {
	r := chi.NewRouter()

	// Apply global middleware
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recover(logger))
	r.Use(middleware.CORS())

	// Apply routes
	wireAuth(r, handler.Auth)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"ts": time.Now().UTC().Format(time.RFC3339),
		})
	})

	return r
}
