package services

import (
	"encoding/json"

	"gorm.io/gorm"

	"billnudge/internal/logger"
	"billnudge/internal/models"
)

// Audited actions.
const (
	AuditRegister           = "REGISTER"
	AuditLogin              = "LOGIN"
	AuditLinkTelegram       = "UPDATE_TELEGRAM_CHAT"
	AuditCreateCategory     = "CREATE_CATEGORY"
	AuditUpdateCategory     = "UPDATE_CATEGORY"
	AuditDeleteCategory     = "DELETE_CATEGORY"
	AuditCreateTransaction  = "CREATE_TRANSACTION"
	AuditDeleteTransaction  = "DELETE_TRANSACTION"
	AuditCreateSubscription = "CREATE_RECURRING_EXPENSE"
	AuditUpdateSubscription = "UPDATE_RECURRING_EXPENSE"
	AuditDeleteSubscription = "DELETE_RECURRING_EXPENSE"
	AuditRecordPayment      = "RECORD_PAYMENT"
	AuditCreateBudget       = "CREATE_BUDGET"
	AuditUpdateBudget       = "UPDATE_BUDGET"
	AuditDeleteBudget       = "DELETE_BUDGET"
	AuditCreateReminder     = "CREATE_REMINDER"
	AuditUpdateReminder     = "UPDATE_REMINDER"
	AuditDeleteReminder     = "DELETE_REMINDER"
	AuditSnoozeReminder     = "SNOOZE_REMINDER"
	AuditCompleteReminder   = "COMPLETE_REMINDER"
)

// Audited resource types.
const (
	ResourceUser             = "user"
	ResourceCategory         = "category"
	ResourceTransaction      = "transaction"
	ResourceRecurringExpense = "recurring_expense"
	ResourceBudget           = "budget"
	ResourceReminder         = "reminder"
)

// auditService records who changed which finance record.
type auditService struct {
	db *gorm.DB
}

// NewAuditService creates a new AuditServicer.
func NewAuditService(db *gorm.DB) AuditServicer {
	return &auditService{db: db}
}

// Log records an audit event. Failures are logged and never reach the
// request that caused them.
func (s *auditService) Log(userID, action, resourceType, resourceID, ipAddress string, changes map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:       userID,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		IPAddress:    ipAddress,
		Changes:      encodeChanges(action, changes),
	}

	if err := s.db.Create(entry).Error; err != nil {
		logger.Named("audit").Errorw("failed to record audit entry",
			"error", err,
			"user_id", userID,
			"action", action,
			"resource", resourceType+"/"+resourceID,
		)
	}
}

// encodeChanges renders the changed fields as JSON; nil means no changes.
func encodeChanges(action string, changes map[string]interface{}) string {
	if changes == nil {
		return ""
	}
	data, err := json.Marshal(changes)
	if err != nil {
		logger.Named("audit").Warnw("unencodable audit changes", "error", err, "action", action)
		return "{}"
	}
	return string(data)
}
