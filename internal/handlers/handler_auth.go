package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
)

type authHandler struct {
	authService portssvc.AuthSvcFacade
}

// registerAuthRoutes sets up the public authentication endpoints.
func registerAuthRoutes(r *gin.Engine, authService portssvc.AuthSvcFacade, rateLimit gin.HandlerFunc) {
	h := &authHandler{authService: authService}

	auth := r.Group("/api/v1/auth")
	if rateLimit != nil {
		auth.Use(rateLimit)
	}
	auth.POST("/login", h.login)
}

// login authenticates a user and returns a bearer token.
func (h *authHandler) login(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for Login", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req)
	if err != nil {
		// Always 401 on auth failure, regardless of the underlying cause.
		logger.Warn("Login failed", slog.String("email", req.Email))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}
	c.JSON(http.StatusOK, resp)
}
