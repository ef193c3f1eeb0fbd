package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"billnudge/internal/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// TestPassword is the plain-text password of every fixture user.
const TestPassword = "password123"

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// CreateTestUser creates a user with a hashed password and unique email.
func CreateTestUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	email := fmt.Sprintf("user%d@test.com", nextID())
	return CreateTestUserWithEmail(t, db, email)
}

// CreateTestUserWithEmail creates a user with the given email.
func CreateTestUserWithEmail(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(TestPassword), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:    email,
		Password: string(hash),
		IsActive: true,
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}

// CreateTestCategory creates a category with a unique name.
func CreateTestCategory(t *testing.T, db *gorm.DB) *models.Category {
	t.Helper()
	return CreateTestCategoryWithName(t, db, fmt.Sprintf("Test Category %d", nextID()))
}

// CreateTestCategoryWithName creates a category with the given name.
func CreateTestCategoryWithName(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := &models.Category{Name: name}
	category.ApplyDefaults()
	if err := db.Create(category).Error; err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return category
}

// CreateTestRecurringExpense creates an active monthly subscription billed on next.
func CreateTestRecurringExpense(t *testing.T, db *gorm.DB, userID, categoryID string, next models.Date) *models.RecurringExpense {
	t.Helper()

	re := &models.RecurringExpense{
		UserID:          userID,
		CategoryID:      categoryID,
		Name:            fmt.Sprintf("Subscription %d", nextID()),
		Amount:          models.MoneyFromString("15.99"),
		BillingCycle:    models.BillingCycleMonthly,
		NextBillingDate: next,
		IsActive:        true,
		ReminderDays:    models.DefaultReminderDays,
	}
	if err := db.Create(re).Error; err != nil {
		t.Fatalf("failed to create test recurring expense: %v", err)
	}
	return re
}

// CreateTestTransaction creates an expense of amount on date.
func CreateTestTransaction(t *testing.T, db *gorm.DB, userID, categoryID, amount string, date models.Date) *models.Transaction {
	t.Helper()
	return CreateTestTransactionOfType(t, db, userID, categoryID, models.TransactionTypeExpense, amount, date)
}

// CreateTestTransactionOfType creates a transaction of the given type.
func CreateTestTransactionOfType(t *testing.T, db *gorm.DB, userID, categoryID string, txType models.TransactionType, amount string, date models.Date) *models.Transaction {
	t.Helper()

	tx := &models.Transaction{
		UserID:          userID,
		CategoryID:      categoryID,
		Title:           fmt.Sprintf("Purchase %d", nextID()),
		Amount:          models.MoneyFromString(amount),
		TransactionType: txType,
		Date:            date,
	}
	if err := db.Create(tx).Error; err != nil {
		t.Fatalf("failed to create test transaction: %v", err)
	}
	return tx
}

// CreateTestBudget creates a budget with the default alert threshold.
func CreateTestBudget(t *testing.T, db *gorm.DB, userID, categoryID string, month, year int, amount string) *models.Budget {
	t.Helper()

	budget := &models.Budget{
		UserID:         userID,
		CategoryID:     categoryID,
		Month:          month,
		Year:           year,
		BudgetAmount:   models.MoneyFromString(amount),
		AlertThreshold: models.DefaultAlertThreshold,
	}
	if err := db.Create(budget).Error; err != nil {
		t.Fatalf("failed to create test budget: %v", err)
	}
	return budget
}

// CreateTestReminder creates an open custom reminder due at due.
func CreateTestReminder(t *testing.T, db *gorm.DB, userID string, due time.Time, freq models.ReminderFrequency) *models.Reminder {
	t.Helper()

	r := &models.Reminder{
		UserID:       userID,
		Title:        fmt.Sprintf("Reminder %d", nextID()),
		ReminderType: models.ReminderTypeCustom,
		DueDate:      due.UTC(),
		Frequency:    freq,
	}
	if err := db.Create(r).Error; err != nil {
		t.Fatalf("failed to create test reminder: %v", err)
	}
	return r
}
