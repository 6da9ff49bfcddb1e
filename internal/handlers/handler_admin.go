package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
)

// adminHandler exposes manual triggers for the periodic jobs, mirroring what
// the worker runs on schedule. Useful for operations and backfills.
type adminHandler struct {
	lifecycleService portssvc.LifecycleSvcFacade
	archivalService  portssvc.ArchivalSvcFacade
}

// registerAdminRoutes registers the admin-only operational endpoints.
func registerAdminRoutes(rg *gin.RouterGroup, lifecycleService portssvc.LifecycleSvcFacade, archivalService portssvc.ArchivalSvcFacade) {
	h := &adminHandler{lifecycleService: lifecycleService, archivalService: archivalService}

	admin := rg.Group("/admin", middleware.AdminRequired())
	{
		admin.POST("/sweeps/archive", h.runArchiveSweep)
		admin.POST("/sweeps/unblock", h.runUnblockSweep)
		admin.POST("/archives/:year/:week", h.archiveWeek)
	}
}

func (h *adminHandler) runArchiveSweep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	count, err := h.lifecycleService.RunBlockedToArchivedSweep(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Sweep failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": count})
}

func (h *adminHandler) runUnblockSweep(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	count, err := h.lifecycleService.RunBlockedToActiveSweep(c.Request.Context())
	if err != nil {
		respondServiceError(c, logger, err, "Sweep failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"unblocked": count})
}

func (h *adminHandler) archiveWeek(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid year"})
		return
	}
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid week"})
		return
	}

	archive, err := h.archivalService.ArchiveWeek(c.Request.Context(), week, year)
	if err != nil {
		respondServiceError(c, logger, err, "Archival failed")
		return
	}
	if archive == nil {
		c.JSON(http.StatusOK, gin.H{"archived": 0})
		return
	}
	c.JSON(http.StatusOK, gin.H{"archived": archive.TotalTransactions, "week": archive.WeekNumber, "year": archive.Year})
}
