package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

// LedgerService covers accounts, categories, posted transactions and the
// dashboard aggregation.
type LedgerService struct {
	store storage.Store
}

// NewLedgerService creates a new LedgerService with the given storage
// backend.
func NewLedgerService(store storage.Store) *LedgerService {
	return &LedgerService{store: store}
}

// CreateAccount opens a new account for the caller.
func (s *LedgerService) CreateAccount(ctx context.Context, userID, name, currency string) (*models.Account, error) {
	fields := make(map[string]string)
	if name == "" {
		fields["name"] = "name is required"
	}
	cur := models.Currency(currency)
	if !cur.Valid() {
		fields["currency"] = "currency must be one of USD, EUR, ILS"
	}
	if len(fields) > 0 {
		return nil, errs.NewFieldValidation(fields)
	}

	account := &models.Account{UserID: userID, Name: name, Currency: cur}
	if err := s.store.CreateAccount(ctx, account); err != nil {
		slog.Error("CreateAccount failed", "error", err)
		return nil, errs.NewServer(err)
	}

	slog.Info("Account created", "account_id", account.ID, "user_id", userID)
	return account, nil
}

// ListAccounts returns the caller's accounts.
func (s *LedgerService) ListAccounts(ctx context.Context, userID string) ([]*models.Account, error) {
	accounts, err := s.store.ListAccountsByUser(ctx, userID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	return accounts, nil
}

// CreateCategory creates a category for the caller.
func (s *LedgerService) CreateCategory(ctx context.Context, userID, name, kind string) (*models.Category, error) {
	fields := make(map[string]string)
	if name == "" {
		fields["name"] = "name is required"
	}
	k := models.CategoryKind(kind)
	if k != models.CategoryExpense && k != models.CategoryIncome {
		fields["kind"] = "kind must be expense or income"
	}
	if len(fields) > 0 {
		return nil, errs.NewFieldValidation(fields)
	}

	category := &models.Category{UserID: userID, Name: name, Kind: k}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		slog.Error("CreateCategory failed", "error", err)
		return nil, errs.NewServer(err)
	}
	return category, nil
}

// ListCategories returns the caller's categories.
func (s *LedgerService) ListCategories(ctx context.Context, userID string) ([]*models.Category, error) {
	categories, err := s.store.ListCategoriesByUser(ctx, userID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	return categories, nil
}

// ListTransactions returns a page of an account's transactions. The
// ownership failure is uniform: a missing account and somebody else's
// account produce the identical Forbidden error, so account IDs cannot be
// probed for existence.
func (s *LedgerService) ListTransactions(ctx context.Context, accountID, callerUserID string, limit, offset int) ([]*models.Transaction, int, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		return nil, 0, errs.NewFieldValidation(map[string]string{
			"offset": "offset must not be negative",
		})
	}

	account, err := s.store.GetAccount(ctx, accountID)
	if err != nil {
		return nil, 0, errs.NewServer(err)
	}
	if account == nil || account.UserID != callerUserID {
		return nil, 0, errs.AccessDenied()
	}

	txns, total, err := s.store.ListTransactionsByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, 0, errs.NewServer(err)
	}
	return txns, total, nil
}

// MonthlySummary is the dashboard aggregation for one calendar month.
type MonthlySummary struct {
	Month         string
	Categories    []*models.CategoryTotal
	TotalExpenses decimal.Decimal
	TotalIncome   decimal.Decimal
}

// Summary aggregates the caller's posted transactions for one month.
func (s *LedgerService) Summary(ctx context.Context, userID string, year, month int) (*MonthlySummary, error) {
	if year < 1970 || month < 1 || month > 12 {
		return nil, errs.NewFieldValidation(map[string]string{
			"month": "year and month must name a valid calendar month",
		})
	}

	key := fmt.Sprintf("%04d-%02d", year, month)
	totals, err := s.store.MonthlyCategoryTotals(ctx, userID, key)
	if err != nil {
		slog.Error("MonthlyCategoryTotals failed", "user_id", userID, "month", key, "error", err)
		return nil, errs.NewServer(err)
	}

	summary := &MonthlySummary{
		Month:         key,
		Categories:    totals,
		TotalExpenses: decimal.Zero,
		TotalIncome:   decimal.Zero,
	}
	for _, t := range totals {
		if t.Kind == models.CategoryIncome {
			summary.TotalIncome = summary.TotalIncome.Add(t.Total)
		} else {
			summary.TotalExpenses = summary.TotalExpenses.Add(t.Total)
		}
	}

	return summary, nil
}
