package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"billnudge/internal/models"
	"billnudge/internal/pagination"
	"billnudge/internal/services"
)

// RecurringExpenseHandler handles subscription and bill requests.
type RecurringExpenseHandler struct {
	recurringExpenseService services.RecurringExpenseServicer
	auditService            services.AuditServicer
}

// NewRecurringExpenseHandler creates a new RecurringExpenseHandler.
func NewRecurringExpenseHandler(recurringExpenseService services.RecurringExpenseServicer, auditService services.AuditServicer) *RecurringExpenseHandler {
	return &RecurringExpenseHandler{recurringExpenseService: recurringExpenseService, auditService: auditService}
}

// CreateRecurringExpenseRequest represents the request payload for creating a recurring expense.
type CreateRecurringExpenseRequest struct {
	CategoryID      string              `json:"category_id" binding:"required,uuid"`
	Name            string              `json:"name" binding:"required,min=1,max=200"`
	Description     string              `json:"description" binding:"max=1000"`
	Amount          decimal.Decimal     `json:"amount" binding:"required,gt=0"`
	BillingCycle    models.BillingCycle `json:"billing_cycle" binding:"required,billing_cycle"`
	NextBillingDate models.Date         `json:"next_billing_date"`
	PaymentMethod   string              `json:"payment_method" binding:"max=50"`
	WebsiteURL      string              `json:"website_url" binding:"omitempty,url,max=500"`
	IsActive        *bool               `json:"is_active"`
	ReminderDays    *int                `json:"reminder_days" binding:"omitempty,min=0,max=365"`
}

// UpdateRecurringExpenseRequest represents the request payload for updating a recurring expense.
type UpdateRecurringExpenseRequest struct {
	CategoryID      *string              `json:"category_id" binding:"omitempty,uuid"`
	Name            *string              `json:"name" binding:"omitempty,min=1,max=200"`
	Description     *string              `json:"description" binding:"omitempty,max=1000"`
	Amount          *decimal.Decimal     `json:"amount" binding:"omitempty,gt=0"`
	BillingCycle    *models.BillingCycle `json:"billing_cycle" binding:"omitempty,billing_cycle"`
	NextBillingDate *models.Date         `json:"next_billing_date"`
	PaymentMethod   *string              `json:"payment_method" binding:"omitempty,max=50"`
	WebsiteURL      *string              `json:"website_url" binding:"omitempty,url,max=500"`
	IsActive        *bool                `json:"is_active"`
	ReminderDays    *int                 `json:"reminder_days" binding:"omitempty,min=0,max=365"`
}

// RecordPaymentRequest represents the optional payload for recording a bill payment.
type RecordPaymentRequest struct {
	Date *models.Date `json:"date"`
}

// CreateRecurringExpense handles the creation of a new recurring expense
// @Summary     Create a recurring expense
// @Description Create a subscription or bill. A bill_due reminder is scheduled reminder_days before the next billing date.
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateRecurringExpenseRequest true "Recurring expense details"
// @Success     201 {object} services.RecurringExpenseResult "Recurring expense created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses [post]
func (h *RecurringExpenseHandler) CreateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.recurringExpenseService.CreateRecurringExpense(userID, services.RecurringExpenseInput{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		Amount:          req.Amount,
		BillingCycle:    req.BillingCycle,
		NextBillingDate: req.NextBillingDate,
		PaymentMethod:   req.PaymentMethod,
		WebsiteURL:      req.WebsiteURL,
		IsActive:        req.IsActive,
		ReminderDays:    req.ReminderDays,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateSubscription, services.ResourceRecurringExpense, result.RecurringExpense.ID, c.ClientIP(),
		map[string]interface{}{
			"name":          req.Name,
			"amount":        req.Amount.String(),
			"billing_cycle": req.BillingCycle,
		})

	c.JSON(http.StatusCreated, result)
}

// GetRecurringExpenses handles listing recurring expenses
// @Summary     Get recurring expenses
// @Description Get a paginated list of recurring expenses ordered by next billing date
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       is_active query bool false "Filter by active status"
// @Param       page      query int  false "Page number (default 1)"
// @Param       page_size query int  false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.RecurringExpenseDetail] "Paginated recurring expenses"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses [get]
func (h *RecurringExpenseHandler) GetRecurringExpenses(c *gin.Context) {
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

	isActive, err := queryBool(c, "is_active")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.recurringExpenseService.GetUserRecurringExpenses(userID, page, isActive)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetSummary returns totals across active recurring expenses
// @Summary     Recurring expense summary
// @Description Count and monthly cost of active subscriptions, with how many need a reminder or are overdue
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Success     200 {object} SummaryResponse "Summary"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /recurring-expenses/summary [get]
func (h *RecurringExpenseHandler) GetSummary(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	summary, err := h.recurringExpenseService.GetSummary(userID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, SummaryResponse{Summary: summary})
}

// GetRecurringExpenseByID handles the retrieval of a specific recurring expense
// @Summary     Get recurring expense by ID
// @Description Get a recurring expense with its billing status
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Success     200 {object} RecurringExpenseResponse "Recurring expense details"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Router      /recurring-expenses/{id} [get]
func (h *RecurringExpenseHandler) GetRecurringExpenseByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	detail, err := h.recurringExpenseService.GetRecurringExpenseByID(userID, id)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, RecurringExpenseResponse{RecurringExpense: detail})
}

// UpdateRecurringExpense handles updating a recurring expense
// @Summary     Update recurring expense
// @Description Update a recurring expense. Changing next_billing_date or reminder_days replaces its pending bill reminder.
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Param       request body UpdateRecurringExpenseRequest true "Fields to update"
// @Success     200 {object} services.RecurringExpenseResult "Updated recurring expense"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Router      /recurring-expenses/{id} [put]
func (h *RecurringExpenseHandler) UpdateRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	update := services.RecurringExpenseUpdate{
		CategoryID:      req.CategoryID,
		Name:            req.Name,
		Description:     req.Description,
		Amount:          req.Amount,
		BillingCycle:    req.BillingCycle,
		NextBillingDate: req.NextBillingDate,
		PaymentMethod:   req.PaymentMethod,
		WebsiteURL:      req.WebsiteURL,
		IsActive:        req.IsActive,
		ReminderDays:    req.ReminderDays,
	}
	result, err := h.recurringExpenseService.UpdateRecurringExpense(userID, id, update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditUpdateSubscription, services.ResourceRecurringExpense, id, c.ClientIP(),
		map[string]interface{}{"rescheduled": update.ReschedulesReminder()})

	c.JSON(http.StatusOK, result)
}

// DeleteRecurringExpense handles deleting a recurring expense
// @Summary     Delete recurring expense
// @Description Delete a recurring expense and its reminders. Linked transactions are kept.
// @Tags        recurring-expenses
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Success     200 {object} MessageResponse "Recurring expense deleted"
// @Failure     400 {object} ErrorResponse "Invalid ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Router      /recurring-expenses/{id} [delete]
func (h *RecurringExpenseHandler) DeleteRecurringExpense(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.recurringExpenseService.DeleteRecurringExpense(userID, id); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteSubscription, services.ResourceRecurringExpense, id, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Recurring expense deleted successfully"})
}

// RecordPayment records a bill payment
// @Summary     Pay a bill
// @Description Record an expense transaction for the bill, advance the next billing date one cycle and reschedule its reminder
// @Tags        recurring-expenses
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Recurring expense ID"
// @Param       request body RecordPaymentRequest false "Payment date (defaults to today)"
// @Success     201 {object} services.PaymentResult "Payment recorded"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Recurring expense not found"
// @Router      /recurring-expenses/{id}/pay [post]
func (h *RecurringExpenseHandler) RecordPayment(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	id, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	// the body is optional
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, bindError(err))
		return
	}

	result, err := h.recurringExpenseService.RecordPayment(userID, id, req.Date)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditRecordPayment, services.ResourceRecurringExpense, id, c.ClientIP(),
		map[string]interface{}{
			"transaction_id":    result.Transaction.ID,
			"next_billing_date": result.RecurringExpense.NextBillingDate.String(),
		})

	c.JSON(http.StatusCreated, result)
}
