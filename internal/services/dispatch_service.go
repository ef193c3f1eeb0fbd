package services

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	apperrors "billnudge/internal/errors"
	"billnudge/internal/logger"
	"billnudge/internal/models"
	"billnudge/internal/notify"
)

// dispatchService hands due reminders to the configured notifiers.
type dispatchService struct {
	db        *gorm.DB
	notifiers []notify.Notifier
	batchSize int
	opts      options
}

// NewDispatchService creates a new DispatchServicer.
func NewDispatchService(db *gorm.DB, notifiers []notify.Notifier, batchSize int, opts ...Option) DispatchServicer {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &dispatchService{
		db:        db,
		notifiers: notifiers,
		batchSize: batchSize,
		opts:      newOptions(opts),
	}
}

// DispatchDue delivers one batch of due reminders. A reminder is marked as
// notified only when every notifier accepted it; otherwise it stays eligible
// for the next run.
func (s *dispatchService) DispatchDue(ctx context.Context) (*DispatchReport, error) {
	now := s.opts.now().UTC()
	log := logger.Named("dispatch")

	var reminders []models.Reminder
	err := s.db.WithContext(ctx).
		Where("is_completed = ? AND due_date <= ?", false, now).
		Where("snoozed_until IS NULL OR snoozed_until <= ?", now).
		Where("notified_at IS NULL OR (snoozed_until IS NOT NULL AND notified_at < snoozed_until)").
		Order("due_date ASC").
		Limit(s.batchSize).
		Find(&reminders).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	report := &DispatchReport{Selected: len(reminders)}
	if len(reminders) == 0 {
		return report, nil
	}

	chats, err := s.chatIDs(ctx, reminders)
	if err != nil {
		return nil, err
	}

	for i := range reminders {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		r := &reminders[i]
		if !r.Deliverable(now) {
			continue
		}

		n := notify.FromReminder(r, chats[r.UserID])
		if err := s.fanOut(ctx, n); err != nil {
			report.Failed++
			log.Warnw("reminder delivery failed",
				"reminder_id", r.ID,
				"user_id", r.UserID,
				"error", err,
			)
			continue
		}

		err := s.db.WithContext(ctx).Model(&models.Reminder{}).
			Where("id = ?", r.ID).
			Update("notified_at", now).Error
		if err != nil {
			return report, apperrors.Wrap(apperrors.ErrInternalServer, err)
		}
		report.Delivered++
	}

	log.Infow("dispatch finished",
		"selected", report.Selected,
		"delivered", report.Delivered,
		"failed", report.Failed,
	)
	return report, nil
}

// fanOut sends n to every notifier concurrently. The returned error is the
// first failure; the other sinks still complete.
func (s *dispatchService) fanOut(ctx context.Context, n notify.Notification) error {
	var g errgroup.Group
	for _, notifier := range s.notifiers {
		g.Go(func() error {
			if err := notifier.Notify(ctx, n); err != nil {
				return fmt.Errorf("%s: %w", notifier.Name(), err)
			}
			return nil
		})
	}
	return g.Wait()
}

// chatIDs loads the linked Telegram chat of every reminder owner in one query.
func (s *dispatchService) chatIDs(ctx context.Context, reminders []models.Reminder) (map[string]*int64, error) {
	seen := make(map[string]struct{}, len(reminders))
	userIDs := make([]string, 0, len(reminders))
	for _, r := range reminders {
		if _, ok := seen[r.UserID]; ok {
			continue
		}
		seen[r.UserID] = struct{}{}
		userIDs = append(userIDs, r.UserID)
	}

	var users []models.User
	err := s.db.WithContext(ctx).
		Select("id", "telegram_chat_id").
		Where("id IN ?", userIDs).
		Find(&users).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	chats := make(map[string]*int64, len(users))
	for _, u := range users {
		chats[u.ID] = u.TelegramChatID
	}
	return chats, nil
}
