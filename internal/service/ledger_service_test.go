package service

import (
	"context"
	"testing"

	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

type ledgerFixture struct {
	store storage.Store
	svc   *LedgerService
	user  *models.User
}

func setupLedgerFixture(t *testing.T) (*ledgerFixture, func()) {
	t.Helper()

	store, cleanup := setupTestStore(t)

	f := &ledgerFixture{
		store: store,
		svc:   NewLedgerService(store),
		user:  createTestUser(t, store, "ledger@example.com"),
	}
	return f, cleanup
}

func (f *ledgerFixture) postTransaction(t *testing.T, accountID, categoryID, amount, date string) {
	t.Helper()

	parsed, err := models.ParseAmount(amount)
	if err != nil {
		t.Fatalf("bad test amount %s: %v", amount, err)
	}
	if err := f.store.CreateTransaction(context.Background(), &models.Transaction{
		AccountID:  accountID,
		CategoryID: categoryID,
		Amount:     parsed,
		Currency:   models.USD,
		Date:       date,
	}); err != nil {
		t.Fatalf("CreateTransaction failed: %v", err)
	}
}

func TestCreateAccount(t *testing.T) {
	f, cleanup := setupLedgerFixture(t)
	defer cleanup()

	account, err := f.svc.CreateAccount(context.Background(), f.user.ID, "Checking", "USD")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.ID == "" {
		t.Error("expected non-empty account ID")
	}

	accounts, err := f.svc.ListAccounts(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("ListAccounts failed: %v", err)
	}
	if len(accounts) != 1 || accounts[0].Name != "Checking" {
		t.Errorf("expected 1 account named Checking, got %d", len(accounts))
	}
}

func TestCreateAccount_Validation(t *testing.T) {
	f, cleanup := setupLedgerFixture(t)
	defer cleanup()

	if _, err := f.svc.CreateAccount(context.Background(), f.user.ID, "", "USD"); !errs.IsValidation(err) {
		t.Errorf("empty name: expected validation error, got %v", err)
	}
	if _, err := f.svc.CreateAccount(context.Background(), f.user.ID, "Checking", "XYZ"); !errs.IsValidation(err) {
		t.Errorf("bad currency: expected validation error, got %v", err)
	}
}

func TestCreateCategory_Validation(t *testing.T) {
	f, cleanup := setupLedgerFixture(t)
	defer cleanup()

	if _, err := f.svc.CreateCategory(context.Background(), f.user.ID, "Rent", "outgoing"); !errs.IsValidation(err) {
		t.Errorf("bad kind: expected validation error, got %v", err)
	}

	category, err := f.svc.CreateCategory(context.Background(), f.user.ID, "Rent", "expense")
	if err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}
	if category.Kind != models.CategoryExpense {
		t.Errorf("kind: expected expense, got %s", category.Kind)
	}
}

func TestListTransactions_OwnershipUniform(t *testing.T) {
	f, cleanup := setupLedgerFixture(t)
	defer cleanup()

	account := createTestAccount(t, f.store, f.user.ID, "Checking")
	intruder := createTestUser(t, f.store, "intruder@example.com")

	// A missing account and somebody else's account fail identically.
	_, _, errMissing := f.svc.ListTransactions(context.Background(), "nonexistent-id", f.user.ID, 10, 0)
	_, _, errForeign := f.svc.ListTransactions(context.Background(), account.ID, intruder.ID, 10, 0)

	if !errs.IsForbidden(errMissing) || !errs.IsForbidden(errForeign) {
		t.Fatalf("expected forbidden errors, got %v and %v", errMissing, errForeign)
	}
	if errMissing.Error() != errForeign.Error() {
		t.Errorf("error messages differ: '%s' vs '%s'", errMissing.Error(), errForeign.Error())
	}
}

func TestListTransactions(t *testing.T) {
	f, cleanup := setupLedgerFixture(t)
	defer cleanup()

	account := createTestAccount(t, f.store, f.user.ID, "Checking")
	category := createTestCategory(t, f.store, f.user.ID, "Groceries")

	f.postTransaction(t, account.ID, category.ID, "12.50", "2026-08-01")
	f.postTransaction(t, account.ID, category.ID, "7.25", "2026-08-02")

	txns, total, err := f.svc.ListTransactions(context.Background(), account.ID, f.user.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactions failed: %v", err)
	}
	if total != 2 || len(txns) != 2 {
		t.Errorf("expected 2 transactions, got %d", total)
	}
}

func TestSummary(t *testing.T) {
	f, cleanup := setupLedgerFixture(t)
	defer cleanup()

	account := createTestAccount(t, f.store, f.user.ID, "Checking")
	groceries := createTestCategory(t, f.store, f.user.ID, "Groceries")

	salary := &models.Category{UserID: f.user.ID, Name: "Salary", Kind: models.CategoryIncome}
	if err := f.store.CreateCategory(context.Background(), salary); err != nil {
		t.Fatalf("CreateCategory failed: %v", err)
	}

	f.postTransaction(t, account.ID, groceries.ID, "12.50", "2026-08-01")
	f.postTransaction(t, account.ID, groceries.ID, "7.25", "2026-08-15")
	f.postTransaction(t, account.ID, salary.ID, "3000.00", "2026-08-28")
	// A different month stays out of the aggregation.
	f.postTransaction(t, account.ID, groceries.ID, "99.99", "2026-07-31")

	summary, err := f.svc.Summary(context.Background(), f.user.ID, 2026, 8)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if summary.Month != "2026-08" {
		t.Errorf("month: expected 2026-08, got %s", summary.Month)
	}
	if got := models.FormatAmount(summary.TotalExpenses); got != "19.75" {
		t.Errorf("total expenses: expected 19.75, got %s", got)
	}
	if got := models.FormatAmount(summary.TotalIncome); got != "3000.00" {
		t.Errorf("total income: expected 3000.00, got %s", got)
	}
	if len(summary.Categories) != 2 {
		t.Errorf("expected 2 category rows, got %d", len(summary.Categories))
	}
}

func TestSummary_BadMonth(t *testing.T) {
	f, cleanup := setupLedgerFixture(t)
	defer cleanup()

	if _, err := f.svc.Summary(context.Background(), f.user.ID, 2026, 13); !errs.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}
