package services

import (
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/logger"
	"billnudge/internal/models"
	"billnudge/internal/pagination"
)

// reminderService handles the reminder lifecycle: create, snooze, complete.
type reminderService struct {
	db   *gorm.DB
	opts options
}

// NewReminderService creates a new ReminderServicer.
func NewReminderService(db *gorm.DB, opts ...Option) ReminderServicer {
	return &reminderService{db: db, opts: newOptions(opts)}
}

// CreateReminder stores an explicitly requested reminder. Linked records must
// belong to the caller.
func (s *reminderService) CreateReminder(userID string, in ReminderInput) (*ReminderDetail, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
	}
	if !in.ReminderType.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid reminder type")
	}
	frequency := in.Frequency
	if frequency == "" {
		frequency = models.FrequencyOnce
	}
	if !frequency.IsValid() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid frequency")
	}
	if in.DueDate.IsZero() {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due date is required")
	}

	if in.RecurringExpenseID != nil {
		if _, err := findRecurringExpense(s.db, userID, *in.RecurringExpenseID); err != nil {
			return nil, err
		}
	}
	if in.BudgetID != nil {
		if _, err := findBudget(s.db, userID, *in.BudgetID); err != nil {
			return nil, err
		}
	}

	reminder := &models.Reminder{
		UserID:             userID,
		Title:              in.Title,
		Message:            in.Message,
		ReminderType:       in.ReminderType,
		DueDate:            in.DueDate.UTC(),
		Frequency:          frequency,
		RecurringExpenseID: in.RecurringExpenseID,
		BudgetID:           in.BudgetID,
	}
	if err := s.db.Create(reminder).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	return s.GetReminderByID(userID, reminder.ID)
}

// GetUserReminders lists the user's reminders by due date.
func (s *reminderService) GetUserReminders(userID string, page pagination.PageRequest, filter ReminderFilter) (*pagination.PageResponse[ReminderDetail], error) {
	page.Defaults()
	now := s.opts.now()

	base := s.db.Model(&models.Reminder{}).Where("user_id = ?", userID)
	if filter.IsCompleted != nil {
		base = base.Where("is_completed = ?", *filter.IsCompleted)
	}
	if filter.ReminderType != nil {
		base = base.Where("reminder_type = ?", *filter.ReminderType)
	}
	if filter.DueBefore != nil {
		base = base.Where("due_date <= ?", filter.DueBefore.UTC())
	}
	if filter.Status != nil {
		base = s.applyStatusFilter(base, *filter.Status, now)
	}

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var reminders []models.Reminder
	if err := base.Preload("RecurringExpense").Preload("Budget.Category").
		Order("due_date ASC").
		Scopes(pagination.Paginate(page)).
		Find(&reminders).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.MapPage(
		pagination.NewPageResponse(reminders, page.Page, page.PageSize, totalItems),
		func(r models.Reminder) ReminderDetail { return toReminderDetail(r, now) },
	)
	return &result, nil
}

// applyStatusFilter mirrors models.Reminder.State in SQL so that status
// filtering composes with pagination.
func (s *reminderService) applyStatusFilter(q *gorm.DB, status models.ReminderStatus, now time.Time) *gorm.DB {
	utcNow := now.UTC()
	if status == models.StatusCompleted {
		return q.Where("is_completed = ?", true)
	}

	q = q.Where("is_completed = ?", false)
	if status == models.StatusSnoozed {
		return q.Where("snoozed_until > ?", utcNow)
	}

	q = q.Where("(snoozed_until IS NULL OR snoozed_until <= ?)", utcNow)
	urgentUntil := models.DateOf(now).AddDays(2).At(0, 0, s.opts.loc).UTC()
	switch status {
	case models.StatusOverdue:
		return q.Where("due_date < ?", utcNow)
	case models.StatusUrgent:
		return q.Where("due_date >= ? AND due_date < ?", utcNow, urgentUntil)
	default:
		return q.Where("due_date >= ?", urgentUntil)
	}
}

// GetReminderByID returns one of the user's reminders with its current state.
func (s *reminderService) GetReminderByID(userID, reminderID string) (*ReminderDetail, error) {
	reminder, err := s.load(s.db, userID, reminderID)
	if err != nil {
		return nil, err
	}
	detail := toReminderDetail(*reminder, s.opts.now())
	return &detail, nil
}

// UpdateReminder applies direct field edits. Completing through an update
// never spawns a successor; use CompleteReminder for that.
func (s *reminderService) UpdateReminder(userID, reminderID string, update ReminderUpdate) (*ReminderDetail, error) {
	reminder, err := s.load(s.db, userID, reminderID)
	if err != nil {
		return nil, err
	}

	if update.Title != nil {
		if strings.TrimSpace(*update.Title) == "" {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "title is required")
		}
		reminder.Title = *update.Title
	}
	if update.Message != nil {
		reminder.Message = *update.Message
	}
	if update.ReminderType != nil {
		if !update.ReminderType.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid reminder type")
		}
		reminder.ReminderType = *update.ReminderType
	}
	if update.Frequency != nil {
		if !update.Frequency.IsValid() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "invalid frequency")
		}
		reminder.Frequency = *update.Frequency
	}
	if update.DueDate != nil {
		if update.DueDate.IsZero() {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "due date is required")
		}
		due := update.DueDate.UTC()
		if !due.Equal(reminder.DueDate) {
			reminder.DueDate = due
			reminder.NotifiedAt = nil
		}
	}
	if update.ClearSnooze {
		reminder.SnoozedUntil = nil
	} else if update.SnoozedUntil != nil {
		until := update.SnoozedUntil.UTC()
		if !until.After(s.opts.clock()) {
			return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "snoozed_until must be in the future")
		}
		reminder.SnoozedUntil = &until
	}
	if update.IsCompleted != nil {
		now := s.opts.clock().UTC()
		switch {
		case *update.IsCompleted:
			reminder.MarkCompleted(now)
		default:
			reminder.IsCompleted = false
			reminder.CompletedAt = nil
		}
	}

	if err := s.db.Omit(clause.Associations).Save(reminder).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	detail := toReminderDetail(*reminder, s.opts.now())
	return &detail, nil
}

// DeleteReminder removes one of the user's reminders.
func (s *reminderService) DeleteReminder(userID, reminderID string) error {
	res := s.db.Where("id = ? AND user_id = ?", reminderID, userID).Delete(&models.Reminder{})
	if res.Error != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrReminderNotFound
	}
	return nil
}

// SnoozeReminder postpones an open reminder by hours from now, replacing any
// earlier snooze.
func (s *reminderService) SnoozeReminder(userID, reminderID string, hours int) (*ReminderDetail, error) {
	if hours < 1 || hours > MaxSnoozeHours {
		return nil, apperrors.WithMessage(apperrors.ErrInvalidInput, "hours must be between 1 and 168")
	}

	reminder, err := s.load(s.db, userID, reminderID)
	if err != nil {
		return nil, err
	}
	if reminder.IsCompleted {
		return nil, apperrors.ErrReminderCompleted
	}

	reminder.Snooze(s.opts.clock().UTC(), hours)
	if err := s.db.Model(&models.Reminder{}).Where("id = ?", reminder.ID).
		Update("snoozed_until", reminder.SnoozedUntil).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	detail := toReminderDetail(*reminder, s.opts.now())
	return &detail, nil
}

// CompleteReminder closes a reminder and, for weekly or monthly reminders,
// schedules the next occurrence. Completing an already completed reminder
// changes nothing.
func (s *reminderService) CompleteReminder(userID, reminderID string) (*CompletionResult, error) {
	now := s.opts.now()
	var (
		reminder  *models.Reminder
		successor *models.Reminder
	)
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var err error
		reminder, err = s.load(tx, userID, reminderID)
		if err != nil {
			return err
		}
		if !reminder.MarkCompleted(now.UTC()) {
			return nil
		}
		res := tx.Model(&models.Reminder{}).
			Where("id = ? AND is_completed = ?", reminder.ID, false).
			Updates(map[string]interface{}{
				"is_completed": true,
				"completed_at": reminder.CompletedAt,
			})
		if res.Error != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
		}
		if res.RowsAffected == 0 {
			// Completed concurrently; the other caller owns the successor.
			reminder, err = s.load(tx, userID, reminderID)
			return err
		}

		successor = reminder.Successor()
		if successor == nil {
			return nil
		}
		if err := tx.Create(successor).Error; err != nil {
			return apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		logger.Get().Infow("recurring reminder rescheduled",
			"reminder_id", reminder.ID,
			"successor_id", successor.ID,
			"due_date", successor.DueDate,
		)
		return nil
	})
	if err != nil {
		return nil, err
	}

	detail := toReminderDetail(*reminder, now)
	result := &CompletionResult{Reminder: &detail}
	if successor != nil {
		successor.RecurringExpense = reminder.RecurringExpense
		successor.Budget = reminder.Budget
		next := toReminderDetail(*successor, now)
		result.Next = &next
	}
	return result, nil
}

func (s *reminderService) load(db *gorm.DB, userID, reminderID string) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := db.Preload("RecurringExpense").Preload("Budget.Category").
		Where("id = ? AND user_id = ?", reminderID, userID).
		First(&reminder).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrReminderNotFound
		}
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return &reminder, nil
}
