package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered user account.
type User struct {
	// ID is the unique identifier for the user (UUID format).
	ID string

	// Email is the user's email address (unique). Used for login.
	Email string

	// DisplayName is the name shown to other users.
	DisplayName string

	// PasswordHash is the bcrypt hash of the user's password.
	// Never serialized to the wire.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64

	// UpdatedAt is the Unix timestamp of the last profile change.
	UpdatedAt int64
}

// NewUser creates a user with a fresh ID and timestamps.
func NewUser(email, displayName, passwordHash string) *User {
	now := time.Now().Unix()
	return &User{
		ID:           uuid.New().String(),
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// Account is a ledger account owned by exactly one user. Every ownership
// check in the services resolves through Account.UserID before any write.
type Account struct {
	// ID is the unique identifier for the account (UUID format).
	ID string

	// UserID is the owning user.
	UserID string

	// Name is the display name of the account (e.g., "Checking", "Joint").
	Name string

	// Currency is the account's base currency.
	Currency Currency

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// CategoryKind distinguishes spending from income categories.
type CategoryKind string

const (
	CategoryExpense CategoryKind = "expense"
	CategoryIncome  CategoryKind = "income"
)

// Category is a user-scoped label for transactions.
type Category struct {
	ID        string
	UserID    string
	Name      string
	Kind      CategoryKind
	CreatedAt int64
}
