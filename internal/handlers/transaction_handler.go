package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
	"billnudge/internal/services"
)

// TransactionHandler handles transaction-related requests
type TransactionHandler struct {
	transactionService services.TransactionServicer
	auditService       services.AuditServicer
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService services.TransactionServicer, auditService services.AuditServicer) *TransactionHandler {
	return &TransactionHandler{transactionService: transactionService, auditService: auditService}
}

// CreateTransactionRequest represents the request payload for creating a transaction
type CreateTransactionRequest struct {
	CategoryID         string                 `json:"category_id" binding:"required,uuid"`
	RecurringExpenseID *string                `json:"recurring_expense_id" binding:"omitempty,uuid"`
	Title              string                 `json:"title" binding:"required,min=1,max=200"`
	Amount             decimal.Decimal        `json:"amount" binding:"required,gt=0"`
	TransactionType    models.TransactionType `json:"transaction_type" binding:"omitempty,transaction_type"`
	Date               *models.Date           `json:"date"`
	PaymentMethod      string                 `json:"payment_method" binding:"max=50"`
	WasImpulsive       bool                   `json:"was_impulsive"`
	Notes              string                 `json:"notes" binding:"max=2000"`
	Tags               string                 `json:"tags" binding:"max=500"`
}

// CreateTransaction handles the creation of a new transaction
// @Summary     Create a transaction
// @Description Record a transaction. Expenses re-evaluate the category budget for the month and may raise budget reminders.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateTransactionRequest true "Transaction details"
// @Success     201 {object} services.TransactionResult "Transaction created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category or recurring expense not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if req.TransactionType == "" {
		req.TransactionType = models.TransactionTypeExpense
	}

	result, err := h.transactionService.CreateTransaction(userID, services.TransactionInput{
		CategoryID:         req.CategoryID,
		RecurringExpenseID: req.RecurringExpenseID,
		Title:              req.Title,
		Amount:             req.Amount,
		TransactionType:    req.TransactionType,
		Date:               req.Date,
		PaymentMethod:      req.PaymentMethod,
		WasImpulsive:       req.WasImpulsive,
		Notes:              req.Notes,
		Tags:               req.Tags,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateTransaction, services.ResourceTransaction, result.Transaction.ID, c.ClientIP(),
		map[string]interface{}{
			"amount":      req.Amount.String(),
			"type":        req.TransactionType,
			"category_id": req.CategoryID,
		})

	c.JSON(http.StatusCreated, result)
}

// GetTransactions handles listing transactions for the authenticated user
// @Summary     Get transactions
// @Description Get a paginated list of transactions, newest first
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       from_date            query string false "Earliest date (YYYY-MM-DD)"
// @Param       to_date              query string false "Latest date (YYYY-MM-DD)"
// @Param       type                 query string false "expense or income"
// @Param       category_id          query string false "Category ID"
// @Param       recurring_expense_id query string false "Recurring expense ID"
// @Param       was_impulsive        query bool   false "Impulsive purchases only"
// @Param       page                 query int    false "Page number (default 1)"
// @Param       page_size            query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.TransactionDetail] "Paginated transactions"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	filter, err := transactionFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.transactionService.GetUserTransactions(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func transactionFilterFromQuery(c *gin.Context) (services.TransactionFilter, error) {
	var (
		filter services.TransactionFilter
		err    error
	)
	if filter.FromDate, err = queryDate(c, "from_date"); err != nil {
		return filter, err
	}
	if filter.ToDate, err = queryDate(c, "to_date"); err != nil {
		return filter, err
	}
	if filter.FromDate != nil && filter.ToDate != nil && filter.ToDate.Before(*filter.FromDate) {
		return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "to_date must not be before from_date")
	}
	if v := c.Query("type"); v != "" {
		t := models.TransactionType(v)
		if !t.IsValid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "type must be 'expense' or 'income'")
		}
		filter.Type = &t
	}
	if filter.CategoryID, err = queryID(c, "category_id"); err != nil {
		return filter, err
	}
	if filter.RecurringExpenseID, err = queryID(c, "recurring_expense_id"); err != nil {
		return filter, err
	}
	if filter.WasImpulsive, err = queryBool(c, "was_impulsive"); err != nil {
		return filter, err
	}
	return filter, nil
}

// GetTransactionByID handles the retrieval of a specific transaction
// @Summary     Get transaction by ID
// @Description Get a specific transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} TransactionResponse "Transaction details"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [get]
func (h *TransactionHandler) GetTransactionByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	transaction, err := h.transactionService.GetTransactionByID(userID, transactionID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Transaction: transaction})
}

// DeleteTransaction handles deleting a transaction
// @Summary     Delete transaction
// @Description Delete a transaction by ID
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Transaction ID"
// @Success     200 {object} MessageResponse "Transaction deleted"
// @Failure     400 {object} ErrorResponse "Invalid transaction ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	transactionID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.transactionService.DeleteTransaction(userID, transactionID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteTransaction, services.ResourceTransaction, transactionID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted successfully"})
}
