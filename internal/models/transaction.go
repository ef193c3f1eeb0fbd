package models

// TransactionType represents the direction of a transaction
type TransactionType string

const (
	TransactionTypeExpense TransactionType = "expense"
	TransactionTypeIncome  TransactionType = "income"
)

// IsValid reports whether t is a known transaction type.
func (t TransactionType) IsValid() bool {
	return t == TransactionTypeExpense || t == TransactionTypeIncome
}

// Transaction is a single dated money movement. Transactions are immutable
// once recorded.
type Transaction struct {
	Base
	UserID             string          `gorm:"type:uuid;not null;index" json:"user_id"`
	CategoryID         string          `gorm:"type:uuid;not null;index" json:"category_id"`
	RecurringExpenseID *string         `gorm:"type:uuid;index" json:"recurring_expense_id"`
	Title              string          `gorm:"size:200;not null" json:"title"`
	Amount             Money           `gorm:"type:numeric(10,2);not null" json:"amount"`
	TransactionType    TransactionType `gorm:"size:10;not null" json:"transaction_type"`
	Date               Date            `gorm:"not null;index" json:"date"`
	PaymentMethod      string          `gorm:"size:50" json:"payment_method"`
	WasImpulsive       bool            `json:"was_impulsive"`
	Notes              string          `json:"notes"`
	Tags               string          `gorm:"size:500" json:"tags"`

	// Relationships
	Category         *Category         `gorm:"foreignKey:CategoryID" json:"-"`
	RecurringExpense *RecurringExpense `gorm:"foreignKey:RecurringExpenseID" json:"-"`
}
