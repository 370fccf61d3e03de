package models

import "github.com/shopspring/decimal"

// RecurringTemplate describes a transaction to be posted once per calendar
// month. Application is idempotent: a (template, month) pair is applied at
// most once regardless of how many times ApplyDue runs.
type RecurringTemplate struct {
	ID         string
	UserID     string
	AccountID  string
	CategoryID string
	Amount     decimal.Decimal
	Currency   Currency

	// DayOfMonth is the posting day, 1-31. Clamped to the month's last
	// day for short months.
	DayOfMonth int

	Description string
	CreatedAt   int64
}
