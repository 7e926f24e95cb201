package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/crediario_backend/internal/core/ports/services"
	"github.com/SscSPs/crediario_backend/internal/dto"
	"github.com/SscSPs/crediario_backend/internal/middleware"
	"github.com/SscSPs/crediario_backend/internal/utils"
	"github.com/gin-gonic/gin"
)

// creditAccountHandler handles HTTP requests related to credit accounts and their payments.
type creditAccountHandler struct {
	creditAccountService  portssvc.CreditAccountSvcFacade
	reconciliationService portssvc.ReconciliationSvcFacade
}

func newCreditAccountHandler(cs portssvc.CreditAccountSvcFacade, rs portssvc.ReconciliationSvcFacade) *creditAccountHandler {
	return &creditAccountHandler{
		creditAccountService:  cs,
		reconciliationService: rs,
	}
}

// RegisterCreditAccountRoutes registers routes related to credit accounts and payments.
func RegisterCreditAccountRoutes(rg *gin.RouterGroup, creditAccountService portssvc.CreditAccountSvcFacade, reconciliationService portssvc.ReconciliationSvcFacade, writes ...gin.HandlerFunc) {
	h := newCreditAccountHandler(creditAccountService, reconciliationService)

	accounts := rg.Group("/credit-accounts")
	{
		accounts.GET("", h.listCreditAccounts)
		accounts.POST("", chain(writes, h.openCreditAccount)...)
		accounts.POST("/from-order", chain(writes, h.creditFromOrder)...)
		accounts.GET("/:id", h.getCreditAccount)
		accounts.GET("/:id/balance", h.getAccountBalance)
		accounts.GET("/:id/installments", h.getInstallmentSchedule)
		accounts.POST("/:id/items", chain(writes, h.addLineItems)...)
		accounts.POST("/:id/suspend", chain(writes, h.suspendCreditAccount)...)
		accounts.POST("/:id/reactivate", chain(writes, h.reactivateCreditAccount)...)
		accounts.POST("/:id/recompute", chain(writes, h.recomputeTotals)...)

		accounts.GET("/:id/payments", h.listPayments)
		accounts.POST("/:id/payments", chain(writes, h.applyPayment)...)
		accounts.POST("/:id/payments/preview", h.previewPayment)
	}

	rg.POST("/side-effects/retry", chain(writes, h.retrySideEffects)...)
}

// openCreditAccount godoc
// @Summary Open a credit account
// @Description Opens an installment-credit account whose total is the sum of its line items
// @Tags credit-accounts
// @Accept  json
// @Produce  json
// @Param   account body dto.OpenCreditAccountRequest true "Customer, line items and installment terms"
// @Success 201 {object} dto.CreditAccountResponse
// @Failure 400 {object} map[string]string "Invalid input, empty line items or non-positive total"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to open credit account"
// @Security BearerAuth
// @Router /credit-accounts [post]
func (h *creditAccountHandler) openCreditAccount(c *gin.Context) {
	var req dto.OpenCreditAccountRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := clerkID(c)
	if !ok {
		return
	}

	account, err := h.creditAccountService.OpenCreditAccount(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to open credit account")
		return
	}

	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Credit account opened",
		slog.String("credit_account_id", account.CreditAccountID),
		slog.String("account_number", account.AccountNumber))
	c.JSON(http.StatusCreated, dto.ToCreditAccountResponse(account))
}

// creditFromOrder godoc
// @Summary Put an order on credit
// @Description Returns the customer's open credit account for the order, creating it from the order total when there is none
// @Tags credit-accounts
// @Accept  json
// @Produce  json
// @Param   request body dto.CreditFromOrderRequest true "Customer, order and installment terms"
// @Success 200 {object} dto.CreditAccountResponse "Existing account"
// @Success 201 {object} dto.CreditAccountResponse "Account created"
// @Failure 400 {object} map[string]string "Invalid input or order cannot go on credit"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Order not found"
// @Failure 500 {object} map[string]string "Failed to put order on credit"
// @Security BearerAuth
// @Router /credit-accounts/from-order [post]
func (h *creditAccountHandler) creditFromOrder(c *gin.Context) {
	var req dto.CreditFromOrderRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := clerkID(c)
	if !ok {
		return
	}

	account, created, err := h.creditAccountService.FindOrCreateForOrder(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to put order on credit")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	c.JSON(status, dto.ToCreditAccountResponse(account))
}

// getCreditAccount godoc
// @Summary Get a credit account by ID
// @Description Retrieves a credit account with its line items
// @Tags credit-accounts
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Success 200 {object} dto.CreditAccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve credit account"
// @Security BearerAuth
// @Router /credit-accounts/{id} [get]
func (h *creditAccountHandler) getCreditAccount(c *gin.Context) {
	account, err := h.creditAccountService.GetCreditAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve credit account")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditAccountResponse(account))
}

// listCreditAccounts godoc
// @Summary List credit accounts
// @Tags credit-accounts
// @Produce  json
// @Param   status query string false "Status filter" Enums(active, paid_off, suspended)
// @Param   customerID query string false "Customer filter"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Page offset" default(0)
// @Success 200 {object} dto.ListCreditAccountsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to list credit accounts"
// @Security BearerAuth
// @Router /credit-accounts [get]
func (h *creditAccountHandler) listCreditAccounts(c *gin.Context) {
	var params dto.ListCreditAccountsParams
	if !bindQuery(c, &params) {
		return
	}
	accounts, err := h.creditAccountService.ListCreditAccounts(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list credit accounts")
		return
	}
	c.JSON(http.StatusOK, dto.ToListCreditAccountsResponse(accounts))
}

// getAccountBalance godoc
// @Summary Get a credit account's balance
// @Description Returns the running totals, repairing them first if they disagree
// @Tags credit-accounts
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Success 200 {object} dto.AccountBalanceResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve balance"
// @Security BearerAuth
// @Router /credit-accounts/{id}/balance [get]
func (h *creditAccountHandler) getAccountBalance(c *gin.Context) {
	balance, err := h.creditAccountService.GetAccountBalance(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve balance")
		return
	}
	c.JSON(http.StatusOK, dto.AccountBalanceResponse{AccountBalance: *balance})
}

// getInstallmentSchedule godoc
// @Summary Get a credit account's installment schedule
// @Tags credit-accounts
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Success 200 {object} dto.InstallmentScheduleResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 500 {object} map[string]string "Failed to retrieve installment schedule"
// @Security BearerAuth
// @Router /credit-accounts/{id}/installments [get]
func (h *creditAccountHandler) getInstallmentSchedule(c *gin.Context) {
	accountID := c.Param("id")
	schedule, err := h.creditAccountService.GetInstallmentSchedule(c.Request.Context(), accountID)
	if err != nil {
		respondError(c, err, "Failed to retrieve installment schedule")
		return
	}
	c.JSON(http.StatusOK, dto.InstallmentScheduleResponse{CreditAccountID: accountID, Installments: schedule})
}

// addLineItems godoc
// @Summary Add line items to a credit account
// @Tags credit-accounts
// @Accept  json
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Param   items body dto.AddLineItemsRequest true "Line items"
// @Success 200 {object} dto.CreditAccountResponse
// @Failure 400 {object} map[string]string "Invalid input or empty line items"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 409 {object} map[string]string "Credit account not active"
// @Failure 500 {object} map[string]string "Failed to add line items"
// @Security BearerAuth
// @Router /credit-accounts/{id}/items [post]
func (h *creditAccountHandler) addLineItems(c *gin.Context) {
	var req dto.AddLineItemsRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := clerkID(c)
	if !ok {
		return
	}
	account, err := h.creditAccountService.AddLineItems(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to add line items")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditAccountResponse(account))
}

// suspendCreditAccount godoc
// @Summary Suspend a credit account
// @Description Blocks new charges. Payments are still accepted.
// @Tags credit-accounts
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Success 200 {object} dto.CreditAccountResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 409 {object} map[string]string "Credit account not active"
// @Failure 500 {object} map[string]string "Failed to suspend credit account"
// @Security BearerAuth
// @Router /credit-accounts/{id}/suspend [post]
func (h *creditAccountHandler) suspendCreditAccount(c *gin.Context) {
	userID, ok := clerkID(c)
	if !ok {
		return
	}
	account, err := h.creditAccountService.SuspendCreditAccount(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to suspend credit account")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditAccountResponse(account))
}

// reactivateCreditAccount godoc
// @Summary Reactivate a suspended credit account
// @Tags credit-accounts
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Success 200 {object} dto.CreditAccountResponse
// @Failure 400 {object} map[string]string "Credit account not suspended"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 500 {object} map[string]string "Failed to reactivate credit account"
// @Security BearerAuth
// @Router /credit-accounts/{id}/reactivate [post]
func (h *creditAccountHandler) reactivateCreditAccount(c *gin.Context) {
	userID, ok := clerkID(c)
	if !ok {
		return
	}
	account, err := h.creditAccountService.ReactivateCreditAccount(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to reactivate credit account")
		return
	}
	c.JSON(http.StatusOK, dto.ToCreditAccountResponse(account))
}

// recomputeTotals godoc
// @Summary Recompute a credit account's totals
// @Description Repairs remaining amount and status from total and paid. Running it twice changes nothing.
// @Tags credit-accounts
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Success 200 {object} dto.RecomputeResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 500 {object} map[string]string "Failed to recompute totals"
// @Security BearerAuth
// @Router /credit-accounts/{id}/recompute [post]
func (h *creditAccountHandler) recomputeTotals(c *gin.Context) {
	userID, ok := clerkID(c)
	if !ok {
		return
	}
	account, repaired, err := h.creditAccountService.RecomputeTotals(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to recompute totals")
		return
	}
	c.JSON(http.StatusOK, dto.RecomputeResponse{Repaired: repaired, Account: dto.ToCreditAccountResponse(account)})
}

// applyPayment godoc
// @Summary Apply a payment to a credit account
// @Description Records the payment and updates the balance atomically. Paying off the account sells its linked reservations and completes its order; follow-ups that fail are returned as warnings.
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Param   payment body dto.ApplyPaymentRequest true "Payment"
// @Success 201 {object} dto.ApplyPaymentResponse
// @Failure 400 {object} map[string]string "Invalid amount or method"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 422 {object} map[string]string "Amount exceeds the remaining balance"
// @Failure 500 {object} map[string]string "Failed to apply payment"
// @Failure 503 {object} map[string]string "Account busy"
// @Security BearerAuth
// @Router /credit-accounts/{id}/payments [post]
func (h *creditAccountHandler) applyPayment(c *gin.Context) {
	var req dto.ApplyPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := clerkID(c)
	if !ok {
		return
	}

	outcome, err := h.reconciliationService.ApplyPayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to apply payment")
		return
	}

	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	if len(outcome.Warnings) > 0 {
		logger.Warn("Payment applied with pending follow-ups", slog.Any("warnings", outcome.Warnings))
	}
	logger.Info("Payment applied",
		slog.String("payment_id", outcome.Payment.PaymentID),
		slog.String("amount", utils.FormatMoney(outcome.Payment.Amount)),
		slog.Bool("paid_off", outcome.PaidOff))
	c.JSON(http.StatusCreated, dto.ToApplyPaymentResponse(outcome))
}

// previewPayment godoc
// @Summary Preview a payment
// @Description Reports what a payment would do without applying it
// @Tags payments
// @Accept  json
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Param   payment body dto.PreviewPaymentRequest true "Amount"
// @Success 200 {object} domain.PaymentPreview
// @Failure 400 {object} map[string]string "Invalid amount"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 422 {object} map[string]string "Amount exceeds the remaining balance"
// @Security BearerAuth
// @Router /credit-accounts/{id}/payments/preview [post]
func (h *creditAccountHandler) previewPayment(c *gin.Context) {
	var req dto.PreviewPaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	preview, err := h.reconciliationService.PreviewPayment(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		respondError(c, err, "Failed to preview payment")
		return
	}
	c.JSON(http.StatusOK, preview)
}

// listPayments godoc
// @Summary List the payments of a credit account
// @Tags payments
// @Produce  json
// @Param   id path string true "Credit account ID"
// @Success 200 {object} dto.ListPaymentsResponse
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Credit account not found"
// @Failure 500 {object} map[string]string "Failed to list payments"
// @Security BearerAuth
// @Router /credit-accounts/{id}/payments [get]
func (h *creditAccountHandler) listPayments(c *gin.Context) {
	payments, err := h.reconciliationService.ListPayments(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list payments")
		return
	}
	c.JSON(http.StatusOK, dto.ToListPaymentsResponse(payments))
}

// retrySideEffects godoc
// @Summary Retry pending payment follow-ups
// @Description Runs follow-ups (customer spend, reservation sale, order completion) that failed after their payment committed
// @Tags payments
// @Produce  json
// @Success 200 {object} domain.RetryReport
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 500 {object} map[string]string "Failed to retry follow-ups"
// @Security BearerAuth
// @Router /side-effects/retry [post]
func (h *creditAccountHandler) retrySideEffects(c *gin.Context) {
	if _, ok := clerkID(c); !ok {
		return
	}
	report, err := h.reconciliationService.RetryPendingSideEffects(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to retry follow-ups")
		return
	}
	c.JSON(http.StatusOK, report)
}
