package api

import (
	"net/http"
	"time"

	"github.com/futig/triage-backend/internal/api/docs"
	emergencyapi "github.com/futig/triage-backend/internal/api/emergency"
	"github.com/futig/triage-backend/internal/api/middleware"
	triageapi "github.com/futig/triage-backend/internal/api/triage"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

type RouterConfig struct {
	RequestTimeout time.Duration
	AllowedOrigins []string
}

// SetupRouter creates and configures the HTTP router
func SetupRouter(triageHandler *triageapi.Handler, emergencyHandler *emergencyapi.Handler, logger *zap.Logger, cfg RouterConfig) http.Handler {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 60 * time.Second
	}

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.AllowedOrigins))
	r.Use(chimiddleware.Timeout(cfg.RequestTimeout))

	docs.RegisterRoutes(r)

	triageapi.RegisterRoutes(r, triageHandler)
	emergencyapi.RegisterRoutes(r, emergencyHandler)

	return r
}
