package handlers

import (
	"github.com/gin-gonic/gin"

	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
	"github.com/jamila-bank/backoffice-api/pkg/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies
// through the service container.
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.AppConfig,
	services *portssvc.ServiceContainer,
	rateLimit gin.HandlerFunc,
) {
	registerHomeRoutes(r)
	registerAuthRoutes(r, services.Auth, rateLimit)

	// Everything under /api/v1 requires a valid bearer token.
	v1 := r.Group("/api/v1", middleware.AuthMiddleware(cfg.JWTSecret))

	registerUserRoutes(v1, services.User)
	registerClientRoutes(v1, services.Client)
	registerAccountRoutes(v1, services.Account, services.Transaction)
	registerTransactionRoutes(v1, services.Transaction)
	registerAdminRoutes(v1, services.Lifecycle, services.Archival)
}
