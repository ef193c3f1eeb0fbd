package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
	"billnudge/internal/services"
)

// ReminderHandler handles reminder-related requests.
type ReminderHandler struct {
	reminderService services.ReminderServicer
	auditService    services.AuditServicer
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(reminderService services.ReminderServicer, auditService services.AuditServicer) *ReminderHandler {
	return &ReminderHandler{reminderService: reminderService, auditService: auditService}
}

// CreateReminderRequest represents the request payload for creating a reminder.
type CreateReminderRequest struct {
	Title              string                   `json:"title" binding:"required,max=200"`
	Message            string                   `json:"message"`
	ReminderType       models.ReminderType      `json:"reminder_type" binding:"required,reminder_type"`
	DueDate            time.Time                `json:"due_date" binding:"required"`
	Frequency          models.ReminderFrequency `json:"frequency" binding:"omitempty,reminder_frequency"`
	RecurringExpenseID *string                  `json:"recurring_expense_id" binding:"omitempty,uuid"`
	BudgetID           *string                  `json:"budget_id" binding:"omitempty,uuid"`
}

// UpdateReminderRequest represents the request payload for updating a reminder.
type UpdateReminderRequest struct {
	Title        *string                   `json:"title" binding:"omitempty,min=1,max=200"`
	Message      *string                   `json:"message"`
	ReminderType *models.ReminderType      `json:"reminder_type" binding:"omitempty,reminder_type"`
	DueDate      *time.Time                `json:"due_date"`
	Frequency    *models.ReminderFrequency `json:"frequency" binding:"omitempty,reminder_frequency"`
	SnoozedUntil *time.Time                `json:"snoozed_until"`
	ClearSnooze  bool                      `json:"clear_snooze"`
	IsCompleted  *bool                     `json:"is_completed"`
}

// SnoozeRequest represents the optional body of a snooze request.
type SnoozeRequest struct {
	Hours *int `json:"hours" binding:"omitempty,min=1,max=168"`
}

// CreateReminder handles the creation of a new reminder.
// @Summary     Create a reminder
// @Description Create a reminder, optionally linked to a recurring expense or budget. Frequency defaults to once.
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateReminderRequest true "Reminder details"
// @Success     201 {object} ReminderResponse "Reminder created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Linked resource not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders [post]
func (h *ReminderHandler) CreateReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}

	reminder, err := h.reminderService.CreateReminder(userID, services.ReminderInput{
		Title:              req.Title,
		Message:            req.Message,
		ReminderType:       req.ReminderType,
		DueDate:            req.DueDate,
		Frequency:          req.Frequency,
		RecurringExpenseID: req.RecurringExpenseID,
		BudgetID:           req.BudgetID,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditCreateReminder, services.ResourceReminder, reminder.ID, c.ClientIP(),
		map[string]interface{}{
			"title":         req.Title,
			"reminder_type": string(req.ReminderType),
			"due_date":      req.DueDate.UTC().Format(time.RFC3339),
		})

	c.JSON(http.StatusCreated, ReminderResponse{Reminder: reminder})
}

// GetReminders handles listing reminders for the authenticated user.
// @Summary     Get reminders
// @Description Get a paginated list of reminders ordered by due date, with derived status
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       is_completed  query bool   false "Filter by completion"
// @Param       reminder_type query string false "Filter by type (bill_due, budget_check, weekly_review, custom)"
// @Param       due_before    query string false "Only reminders due at or before this RFC 3339 instant"
// @Param       status        query string false "Filter by status (completed, snoozed, overdue, urgent, upcoming)"
// @Param       page          query int    false "Page number (default 1)"
// @Param       page_size     query int    false "Items per page (default 20, max 100)"
// @Success     200 {object} pagination.PageResponse[services.ReminderDetail] "Paginated reminders"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders [get]
func (h *ReminderHandler) GetReminders(c *gin.Context) {
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

	filter, err := reminderFilterFromQuery(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reminderService.GetUserReminders(userID, page, filter)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func reminderFilterFromQuery(c *gin.Context) (services.ReminderFilter, error) {
	var (
		filter services.ReminderFilter
		err    error
	)
	if filter.IsCompleted, err = queryBool(c, "is_completed"); err != nil {
		return filter, err
	}
	if filter.DueBefore, err = queryTime(c, "due_before"); err != nil {
		return filter, err
	}
	if v := c.Query("reminder_type"); v != "" {
		rt := models.ReminderType(v)
		if !rt.IsValid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid reminder_type")
		}
		filter.ReminderType = &rt
	}
	if v := c.Query("status"); v != "" {
		st := models.ReminderStatus(v)
		if !st.IsValid() {
			return filter, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid status")
		}
		filter.Status = &st
	}
	return filter, nil
}

// GetReminderByID handles the retrieval of a specific reminder.
// @Summary     Get reminder by ID
// @Description Get a reminder with its derived status
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} ReminderResponse "Reminder details"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id} [get]
func (h *ReminderHandler) GetReminderByID(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminder, err := h.reminderService.GetReminderByID(userID, reminderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ReminderResponse{Reminder: reminder})
}

// UpdateReminder handles direct edits to a reminder.
// @Summary     Update reminder
// @Description Edit reminder fields. Setting is_completed through an update never schedules a successor.
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string                true "Reminder ID"
// @Param       request body UpdateReminderRequest true "Fields to update"
// @Success     200 {object} ReminderResponse "Updated reminder"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id} [put]
func (h *ReminderHandler) UpdateReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, bindError(err))
		return
	}
	if req.ClearSnooze && req.SnoozedUntil != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "snoozed_until and clear_snooze are mutually exclusive"))
		return
	}

	reminder, err := h.reminderService.UpdateReminder(userID, reminderID, services.ReminderUpdate{
		Title:        req.Title,
		Message:      req.Message,
		ReminderType: req.ReminderType,
		DueDate:      req.DueDate,
		Frequency:    req.Frequency,
		SnoozedUntil: req.SnoozedUntil,
		ClearSnooze:  req.ClearSnooze,
		IsCompleted:  req.IsCompleted,
	})
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if req.Title != nil {
		changes["title"] = *req.Title
	}
	if req.DueDate != nil {
		changes["due_date"] = req.DueDate.UTC().Format(time.RFC3339)
	}
	if req.IsCompleted != nil {
		changes["is_completed"] = *req.IsCompleted
	}
	h.auditService.Log(userID, services.AuditUpdateReminder, services.ResourceReminder, reminderID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, ReminderResponse{Reminder: reminder})
}

// DeleteReminder handles deleting a reminder.
// @Summary     Delete reminder
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} MessageResponse "Reminder deleted"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id} [delete]
func (h *ReminderHandler) DeleteReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.reminderService.DeleteReminder(userID, reminderID); err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditDeleteReminder, services.ResourceReminder, reminderID, c.ClientIP(), nil)

	c.JSON(http.StatusOK, gin.H{"message": "Reminder deleted successfully"})
}

// SnoozeReminder handles postponing a reminder.
// @Summary     Snooze reminder
// @Description Postpone an open reminder by a number of hours from now (default 2, max 168). The body is optional.
// @Tags        reminders
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id      path string        true  "Reminder ID"
// @Param       request body SnoozeRequest false "Snooze duration"
// @Success     200 {object} ReminderResponse "Snoozed reminder"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     409 {object} ErrorResponse "Reminder already completed"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id}/snooze [post]
func (h *ReminderHandler) SnoozeReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req SnoozeRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(c, bindError(err))
		return
	}
	hours := services.DefaultSnoozeHours
	if req.Hours != nil {
		hours = *req.Hours
	}

	reminder, err := h.reminderService.SnoozeReminder(userID, reminderID, hours)
	if err != nil {
		respondWithError(c, err)
		return
	}

	h.auditService.Log(userID, services.AuditSnoozeReminder, services.ResourceReminder, reminderID, c.ClientIP(),
		map[string]interface{}{"hours": hours})

	c.JSON(http.StatusOK, ReminderResponse{Reminder: reminder})
}

// CompleteReminder handles completing a reminder.
// @Summary     Complete reminder
// @Description Mark a reminder as done. Weekly and monthly reminders schedule their next occurrence.
// @Tags        reminders
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Reminder ID"
// @Success     200 {object} services.CompletionResult "Completed reminder and successor"
// @Failure     400 {object} ErrorResponse "Invalid reminder ID"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Reminder not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /reminders/{id}/complete [post]
func (h *ReminderHandler) CompleteReminder(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	reminderID, err := parsePathID(c, "id")
	if err != nil {
		respondWithError(c, err)
		return
	}

	result, err := h.reminderService.CompleteReminder(userID, reminderID)
	if err != nil {
		respondWithError(c, err)
		return
	}

	changes := map[string]interface{}{}
	if result.Next != nil {
		changes["next_reminder_id"] = result.Next.ID
	}
	h.auditService.Log(userID, services.AuditCompleteReminder, services.ResourceReminder, reminderID, c.ClientIP(), changes)

	c.JSON(http.StatusOK, result)
}
