package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	portssvc "github.com/jamila-bank/backoffice-api/internal/core/ports/services"
	"github.com/jamila-bank/backoffice-api/internal/dto"
	"github.com/jamila-bank/backoffice-api/internal/middleware"
	"github.com/jamila-bank/backoffice-api/internal/utils/mapping"
)

// accountHandler handles HTTP requests for the account directory.
type accountHandler struct {
	accountService     portssvc.AccountSvcFacade
	transactionService portssvc.TransactionSvcFacade
}

// registerAccountRoutes registers routes related to accounts.
func registerAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade, transactionService portssvc.TransactionSvcFacade) {
	h := &accountHandler{accountService: accountService, transactionService: transactionService}

	accounts := rg.Group("/accounts")
	{
		accounts.POST("", middleware.AdminRequired(), h.createAccount)
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.PUT("/:id", middleware.AdminRequired(), h.updateAccount)
		accounts.DELETE("/:id", middleware.AdminRequired(), h.closeAccount)
		accounts.GET("/:id/balance", h.getBalance)
		accounts.GET("/:id/transactions", h.listAccountTransactions)
		accounts.GET("/:id/statistics", h.getAccountStatistics)
		accounts.GET("/number/:number", h.getAccountByNumber)
	}
}

// createAccount opens a new account, provisioning the owner when needed.
func (h *accountHandler) createAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Warn("Failed to bind JSON for CreateAccount", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to create account")
		return
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID))
	c.JSON(http.StatusCreated, mapping.ToAccountResponse(*account))
}

func (h *accountHandler) getAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.GetAccountByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, mapping.ToAccountResponse(*account))
}

func (h *accountHandler) getAccountByNumber(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	account, err := h.accountService.GetAccountByNumber(c.Request.Context(), caller, c.Param("number"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to retrieve account")
		return
	}
	c.JSON(http.StatusOK, mapping.ToAccountResponse(*account))
}

func (h *accountHandler) listAccounts(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.ListAccountsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters: " + err.Error()})
		return
	}

	accounts, err := h.accountService.ListAccounts(c.Request.Context(), caller, req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list accounts")
		return
	}
	c.JSON(http.StatusOK, gin.H{"accounts": mapping.ToAccountResponses(accounts)})
}

func (h *accountHandler) updateAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to update account")
		return
	}
	c.JSON(http.StatusOK, mapping.ToAccountResponse(*account))
}

// closeAccount archives an account and its ledger rows.
func (h *accountHandler) closeAccount(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	if err := h.accountService.CloseAccount(c.Request.Context(), caller, c.Param("id")); err != nil {
		respondServiceError(c, logger, err, "Failed to close account")
		return
	}
	c.Status(http.StatusNoContent)
}

// getBalance derives the current balance from the ledger on every call.
func (h *accountHandler) getBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	accountID := c.Param("id")
	balance, err := h.transactionService.GetBalance(c.Request.Context(), caller, accountID)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute balance")
		return
	}
	c.JSON(http.StatusOK, dto.BalanceResponse{AccountID: accountID, Balance: balance})
}

func (h *accountHandler) listAccountTransactions(c *gin.Context) {
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

	txns, err := h.transactionService.ListTransactionsByAccount(c.Request.Context(), caller, c.Param("id"), req)
	if err != nil {
		respondServiceError(c, logger, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": mapping.ToTransactionResponses(txns)})
}

func (h *accountHandler) getAccountStatistics(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	caller, ok := middleware.GetCallerFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	stats, err := h.transactionService.GetAccountStatistics(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		respondServiceError(c, logger, err, "Failed to compute account statistics")
		return
	}
	c.JSON(http.StatusOK, mapping.ToAccountStatisticsResponse(*stats))
}
