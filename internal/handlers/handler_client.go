package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
	"github.com/jamila-bank/backoffice-api/internal/utils/mapping"
)

// clientHandler handles HTTP requests for the client directory.
type clientHandler struct {
	clientService portssvc.ClientSvcFacade
}

// registerClientRoutes registers routes related to clients.
func registerClientRoutes(rg *gin.RouterGroup, clientService portssvc.ClientSvcFacade) {
	h := &clientHandler{clientService: clientService}

	clients := rg.Group("/clients")
	{
		clients.GET("", middleware.AdminRequired(), h.listClients)
		clients.GET("/me", h.getCurrentClient)
		clients.GET("/:id", h.getClient)
		clients.GET("/phone/:phone", middleware.AdminRequired(), h.getClientByPhone)
		clients.PUT("/:id", middleware.AdminRequired(), h.updateClient)
	}
}

func (h *clientHandler) listClients(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListClientsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	clients, err := h.clientService.ListClients(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list clients")
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": mapping.ToClientResponses(clients)})
}

// getCurrentClient returns the client profile linked to the caller.
func (h *clientHandler) getCurrentClient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	client, err := h.clientService.GetClientByUserID(c.Request.Context(), caller.UserID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve client profile")
		return
	}
	c.JSON(http.StatusOK, mapping.ToClientResponse(*client))
}

func (h *clientHandler) getClient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	client, err := h.clientService.GetClientByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve client")
		return
	}
	c.JSON(http.StatusOK, mapping.ToClientResponse(*client))
}

func (h *clientHandler) getClientByPhone(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	client, err := h.clientService.FindClientByPhone(c.Request.Context(), caller, c.Param("phone"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve client")
		return
	}
	c.JSON(http.StatusOK, mapping.ToClientResponse(*client))
}

func (h *clientHandler) updateClient(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update client")
		return
	}
	c.JSON(http.StatusOK, mapping.ToClientResponse(*client))
}
