// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"

	"github.com/adigold/splitbook/internal/models"
)

// ExpenseFilter selects shared expenses by their derived settlement state.
type ExpenseFilter string

const (
	// FilterPending matches expenses with at least one PENDING share.
	FilterPending ExpenseFilter = "pending"
	// FilterSettled matches expenses whose shares are all PAID.
	FilterSettled ExpenseFilter = "settled"
	// FilterAll matches every live expense.
	FilterAll ExpenseFilter = "all"
)

// Store defines the interface for splitbook's persistence operations.
// This abstraction allows swapping storage backends (SQLite, PostgreSQL,
// etc.) without changing the service layer.
//
// Lookup methods return (nil, nil) when the row does not exist; errors are
// reserved for infrastructure failures. Conditional mutations return a
// boolean reporting whether the guarded update applied, so the services
// can distinguish "lost the race" from "failed".
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, user *models.User) error

	// GetUserByEmail retrieves a user by email address.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	// CreateAccount persists a new account. The account.ID field is
	// populated by the store if empty.
	CreateAccount(ctx context.Context, account *models.Account) error

	// GetAccount retrieves an account by ID.
	GetAccount(ctx context.Context, id string) (*models.Account, error)

	// ListAccountsByUser retrieves all accounts owned by a user.
	ListAccountsByUser(ctx context.Context, userID string) ([]*models.Account, error)

	// CreateCategory persists a new category.
	CreateCategory(ctx context.Context, category *models.Category) error

	// GetCategory retrieves a category by ID.
	GetCategory(ctx context.Context, id string) (*models.Category, error)

	// ListCategoriesByUser retrieves all categories owned by a user.
	ListCategoriesByUser(ctx context.Context, userID string) ([]*models.Category, error)

	// CreateTransaction posts a single ledger transaction.
	CreateTransaction(ctx context.Context, txn *models.Transaction) error

	// ListTransactionsByAccount retrieves a page of transactions for an
	// account, newest first, along with the total row count.
	ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, int, error)

	// MonthlyCategoryTotals aggregates a user's posted transactions for
	// one "YYYY-MM" month into per-category totals.
	MonthlyCategoryTotals(ctx context.Context, userID, month string) ([]*models.CategoryTotal, error)

	// CreateTransactionRequest persists a new PENDING request.
	CreateTransactionRequest(ctx context.Context, req *models.TransactionRequest) error

	// GetTransactionRequest retrieves a request by ID.
	GetTransactionRequest(ctx context.Context, id string) (*models.TransactionRequest, error)

	// SettleTransactionRequest moves a request out of PENDING with a
	// conditional update (WHERE status = PENDING). When post is non-nil
	// the ledger transaction is inserted in the same database
	// transaction as the status change: if either write fails, neither
	// persists. Returns false without error when the guard did not
	// match, i.e. the request was already settled.
	SettleTransactionRequest(ctx context.Context, id string, status models.RequestStatus, post *models.Transaction) (bool, error)

	// CreateSharedExpense persists an expense and all its participant
	// rows in one database transaction.
	CreateSharedExpense(ctx context.Context, expense *models.SharedExpense) error

	// GetSharedExpense retrieves an expense with its participants,
	// including soft-deleted rows; callers decide how deletion surfaces.
	GetSharedExpense(ctx context.Context, id string) (*models.SharedExpense, error)

	// GetExpenseParticipant retrieves one share by ID.
	GetExpenseParticipant(ctx context.Context, id string) (*models.ExpenseParticipant, error)

	// MarkParticipantPaid flips one live share PENDING -> PAID with a
	// conditional update. Two concurrent calls on the same share cannot
	// both succeed: the loser gets false with a nil error.
	MarkParticipantPaid(ctx context.Context, participantID string, paidAt int64) (bool, error)

	// SoftDeleteSharedExpense soft-deletes an expense and cascades the
	// soft-delete to all its live participants in one database
	// transaction. The root update is guarded on the expense being live
	// and having no PAID participant; returns false when the guard did
	// not match.
	SoftDeleteSharedExpense(ctx context.Context, expenseID, deletedBy string, deletedAt int64) (bool, error)

	// ListSharedExpenses retrieves a page of live expenses the user owns
	// or participates in, newest first, with participants attached, plus
	// the total count matching the filter.
	ListSharedExpenses(ctx context.Context, userID string, filter ExpenseFilter, limit, offset int) ([]*models.SharedExpense, int, error)

	// CreateRecurringTemplate persists a new template.
	CreateRecurringTemplate(ctx context.Context, tmpl *models.RecurringTemplate) error

	// ListRecurringTemplatesByUser retrieves a user's templates.
	ListRecurringTemplatesByUser(ctx context.Context, userID string) ([]*models.RecurringTemplate, error)

	// ApplyRecurringTemplate records the application of a template for a
	// "YYYY-MM" month and posts the ledger transaction, atomically.
	// The (template, month) pair is unique: a second application of the
	// same month returns false with no ledger effect.
	ApplyRecurringTemplate(ctx context.Context, templateID, month string, post *models.Transaction) (bool, error)

	// Ping verifies the backing store is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
