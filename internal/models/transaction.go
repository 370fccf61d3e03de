package models

import "github.com/shopspring/decimal"

// Transaction is a posted ledger entry against an account. Rows are
// immutable once written.
type Transaction struct {
	// ID is the unique identifier for the transaction (UUID format).
	ID string

	// AccountID is the account the transaction is posted to.
	AccountID string

	// CategoryID classifies the transaction.
	CategoryID string

	// Amount is the transaction amount, scale two.
	Amount decimal.Decimal

	// Currency is the transaction currency.
	Currency Currency

	// Date is the effective date in "YYYY-MM-DD" format.
	Date string

	// Description is an optional free-text note.
	Description string

	// CreatedAt is the Unix timestamp when the row was written.
	CreatedAt int64
}

// CategoryTotal is one row of the monthly dashboard aggregation.
type CategoryTotal struct {
	CategoryID   string
	CategoryName string
	Kind         CategoryKind
	Total        decimal.Decimal
}
