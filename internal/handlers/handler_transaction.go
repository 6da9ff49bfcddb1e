package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jamila-bank/backoffice-api/internal/core/domain"
	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
	"github.com/jamila-bank/backoffice-api/internal/utils/mapping"
)

// transactionHandler handles HTTP requests for the ledger.
type transactionHandler struct {
	transactionService portssvc.TransactionSvcFacade
}

// registerTransactionRoutes registers routes related to the ledger.
func registerTransactionRoutes(rg *gin.RouterGroup, transactionService portssvc.TransactionSvcFacade) {
	h := &transactionHandler{transactionService: transactionService}

	txns := rg.Group("/transactions")
	{
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.GET("/:id", h.getTransaction)
		txns.PATCH("/:id/status", middleware.AdminRequired(), h.updateTransactionStatus)
		txns.DELETE("/:id", middleware.AdminRequired(), h.deleteTransaction)
	}

	rg.GET("/statistics", middleware.AdminRequired(), h.getStatistics)
	rg.GET("/dashboard", h.getClientDashboard)
}

// getClientDashboard returns the caller's position summary.
func (h *transactionHandler) getClientDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	dashboard, err := h.transactionService.GetClientDashboard(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, mapping.ToClientDashboardResponse(*dashboard))
}

// createTransaction validates and commits a new ledger movement.
func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateTransaction", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.transactionService.CreateTransaction(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)),
	)
	c.JSON(http.StatusCreated, mapping.ToTransactionResponse(*txn))
}

func (h *transactionHandler) getTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	txn, err := h.transactionService.GetTransactionByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve transaction")
		return
	}
	c.JSON(http.StatusOK, mapping.ToTransactionResponse(*txn))
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListTransactionsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	txns, err := h.transactionService.ListTransactions(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": mapping.ToTransactionResponses(txns)})
}

func (h *transactionHandler) updateTransactionStatus(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateTransactionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	txn, err := h.transactionService.UpdateTransactionStatus(c.Request.Context(), caller, c.Param("id"), domain.TransactionStatus(req.Status))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update transaction status")
		return
	}
	c.JSON(http.StatusOK, mapping.ToTransactionResponse(*txn))
}

func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.transactionService.DeleteTransaction(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondServiceError(c, logger, err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *transactionHandler) getStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.transactionService.GetStatistics(c.Request.Context(), caller)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute statistics")
		return
	}
	c.JSON(http.StatusOK, dto.LedgerStatisticsResponse{
		TotalTransactions: stats.TotalTransactions,
		NetBalance:        stats.NetBalance,
	})
}
