package models

import "github.com/shopspring/decimal"

// ParticipantStatus is the payment state of one expense share. The only
// legal transition is PENDING to PAID, exactly once.
type ParticipantStatus string

const (
	ParticipantPending ParticipantStatus = "PENDING"
	ParticipantPaid    ParticipantStatus = "PAID"
)

// SharedExpense is an expense split across participants. The expense owns
// its participant rows: cancelling the expense soft-deletes the whole
// aggregate in one transaction.
type SharedExpense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// OwnerID is the user who created the expense. Only the owner may
	// mark shares paid or cancel the expense.
	OwnerID string

	// Amount is the full expense amount; the participant shares sum to
	// it exactly.
	Amount decimal.Decimal

	// Currency is the expense currency.
	Currency Currency

	// CategoryID classifies the expense.
	CategoryID string

	// Date is the expense date in "YYYY-MM-DD" format.
	Date string

	// Description is an optional free-text note.
	Description string

	// Participants are the shares owed against this expense.
	Participants []ExpenseParticipant

	// CreatedAt is the Unix timestamp when the expense was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of the soft-delete, 0 if live.
	DeletedAt int64

	// DeletedBy is the user who cancelled the expense, empty if live.
	DeletedBy string
}

// Deleted reports whether the expense has been soft-deleted.
func (e *SharedExpense) Deleted() bool {
	return e.DeletedAt != 0
}

// Settled reports whether every live participant share is PAID.
// Derived on read, never stored.
func (e *SharedExpense) Settled() bool {
	for i := range e.Participants {
		if e.Participants[i].Status == ParticipantPending {
			return false
		}
	}
	return len(e.Participants) > 0
}

// ExpenseParticipant is one user's share of a SharedExpense.
type ExpenseParticipant struct {
	// ID is the unique identifier for the share (UUID format).
	ID string

	// SharedExpenseID is the owning expense.
	SharedExpenseID string

	// PayerID is the user obligated to pay this share.
	PayerID string

	// ShareAmount is this participant's portion, scale two.
	ShareAmount decimal.Decimal

	// Status is the payment state.
	Status ParticipantStatus

	// PaidAt is the Unix timestamp of settlement, 0 while PENDING.
	// Set iff Status is PAID.
	PaidAt int64

	// CreatedAt is the Unix timestamp when the share was created.
	CreatedAt int64

	// DeletedAt is the Unix timestamp of the cascading soft-delete,
	// 0 if live.
	DeletedAt int64

	// DeletedBy is the user who cancelled the parent expense, empty if
	// live.
	DeletedBy string
}

// Deleted reports whether the share has been soft-deleted.
func (p *ExpenseParticipant) Deleted() bool {
	return p.DeletedAt != 0
}
