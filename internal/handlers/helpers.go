package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/middleware"
	"billnudge/internal/models"
	"billnudge/internal/services"
	"billnudge/internal/uuid"
	"billnudge/internal/validator"
)

// getUserID extracts the authenticated user ID from the Gin context.
// Returns ErrUnauthorized if not present.
func getUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get("userID")
	if !exists {
		return "", apperrors.ErrUnauthorized
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		return "", apperrors.ErrUnauthorized
	}
	return id, nil
}

// parsePathID validates a UUID path parameter.
// Returns ErrInvalidInput if the parameter is not a valid UUID.
func parsePathID(c *gin.Context, param string) (string, error) {
	id := c.Param(param)
	if !uuid.IsValid(id) {
		return "", apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+param)
	}
	return id, nil
}

// respondWithError writes a consistent JSON error response.
func respondWithError(c *gin.Context, err error) {
	middleware.WriteError(c, err)
}

// bindError converts a binding failure into an INVALID_INPUT error with
// per-field details when the validator reported any.
func bindError(err error) error {
	if details := validator.FieldErrors(err); len(details) > 0 {
		return apperrors.WithDetails(apperrors.ErrInvalidInput, "Validation failed", details)
	}
	return apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error())
}

func queryBool(c *gin.Context, key string) (*bool, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be 'true' or 'false'")
	}
	return &b, nil
}

func queryInt(c *gin.Context, key string) (*int, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be a number")
	}
	return &i, nil
}

func queryDate(c *gin.Context, key string) (*models.Date, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	d, err := models.ParseDate(v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be a date (YYYY-MM-DD)")
	}
	return &d, nil
}

func queryTime(c *gin.Context, key string) (*time.Time, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, key+" must be an RFC 3339 timestamp")
	}
	return &t, nil
}

func queryID(c *gin.Context, key string) (*string, error) {
	v := c.Query(key)
	if v == "" {
		return nil, nil
	}
	if !uuid.IsValid(v) {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid "+key)
	}
	return &v, nil
}

// ErrorDetail represents the inner error object in an error response.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// MessageResponse is returned by endpoints with no resource body.
type MessageResponse struct {
	Message string `json:"message"`
}

// ProfileResponse wraps the authenticated user.
type ProfileResponse struct {
	User UserResponse `json:"user"`
}

// CategoryResponse wraps a single category.
type CategoryResponse struct {
	Category *models.Category `json:"category"`
}

// TransactionResponse wraps a single transaction.
type TransactionResponse struct {
	Transaction *services.TransactionDetail `json:"transaction"`
}

// RecurringExpenseResponse wraps a single recurring expense.
type RecurringExpenseResponse struct {
	RecurringExpense *services.RecurringExpenseDetail `json:"recurring_expense"`
}

// SummaryResponse wraps the subscription summary.
type SummaryResponse struct {
	Summary *services.RecurringExpenseSummary `json:"summary"`
}

// BudgetResponse wraps a single budget with its progress.
type BudgetResponse struct {
	Budget *services.BudgetDetail `json:"budget"`
}

// ProgressResponse wraps the spending figures of a budget.
type ProgressResponse struct {
	Progress *models.BudgetProgress `json:"progress"`
}

// ReminderResponse wraps a single reminder.
type ReminderResponse struct {
	Reminder *services.ReminderDetail `json:"reminder"`
}
