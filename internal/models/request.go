package models

import "github.com/shopspring/decimal"

// RequestStatus is the state of a TransactionRequest. The only legal
// transitions are PENDING to APPROVED and PENDING to REJECTED; terminal
// states are immutable.
type RequestStatus string

const (
	RequestPending  RequestStatus = "PENDING"
	RequestApproved RequestStatus = "APPROVED"
	RequestRejected RequestStatus = "REJECTED"
)

// TransactionRequest is one user asking another to approve a transaction
// on their behalf. Created by the owner of the from account; mutated only
// by the owner of the to account. Rows are never physically deleted: the
// status records the outcome.
type TransactionRequest struct {
	// ID is the unique identifier for the request (UUID format).
	ID string

	// FromAccountID is the requesting side's account.
	FromAccountID string

	// ToAccountID is the account the transaction would be posted to.
	// Its owner is the only user allowed to approve or reject.
	ToAccountID string

	// CategoryID classifies the proposed transaction.
	CategoryID string

	// Amount is the proposed amount, scale two, always positive.
	Amount decimal.Decimal

	// Currency is the proposed currency.
	Currency Currency

	// Date is the proposed effective date in "YYYY-MM-DD" format.
	Date string

	// Description is an optional free-text note.
	Description string

	// Status is the request state.
	Status RequestStatus

	// CreatedAt is the Unix timestamp when the request was created.
	CreatedAt int64
}
