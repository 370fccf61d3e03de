package service

import (
	"context"
	"testing"
	"time"

	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

type recurringFixture struct {
	store    storage.Store
	svc      *RecurringService
	user     *models.User
	account  *models.Account
	category *models.Category
}

func setupRecurringFixture(t *testing.T) (*recurringFixture, func()) {
	t.Helper()

	store, cleanup := setupTestStore(t)

	user := createTestUser(t, store, "recurring@example.com")

	f := &recurringFixture{
		store:    store,
		svc:      NewRecurringService(store),
		user:     user,
		account:  createTestAccount(t, store, user.ID, "Checking"),
		category: createTestCategory(t, store, user.ID, "Rent"),
	}
	return f, cleanup
}

func TestCreateTemplate(t *testing.T) {
	f, cleanup := setupRecurringFixture(t)
	defer cleanup()

	tmpl, err := f.svc.CreateTemplate(context.Background(), f.user.ID, CreateTemplateInput{
		AccountID:   f.account.ID,
		CategoryID:  f.category.ID,
		Amount:      "1200.00",
		Currency:    "USD",
		DayOfMonth:  1,
		Description: "Monthly rent",
	})
	if err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}
	if tmpl.ID == "" {
		t.Error("expected non-empty template ID")
	}

	templates, err := f.svc.ListTemplates(context.Background(), f.user.ID)
	if err != nil {
		t.Fatalf("ListTemplates failed: %v", err)
	}
	if len(templates) != 1 {
		t.Errorf("expected 1 template, got %d", len(templates))
	}
}

func TestCreateTemplate_BadDayOfMonth(t *testing.T) {
	f, cleanup := setupRecurringFixture(t)
	defer cleanup()

	_, err := f.svc.CreateTemplate(context.Background(), f.user.ID, CreateTemplateInput{
		AccountID:  f.account.ID,
		CategoryID: f.category.ID,
		Amount:     "1200.00",
		Currency:   "USD",
		DayOfMonth: 32,
	})
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateTemplate_AccountNotOwned(t *testing.T) {
	f, cleanup := setupRecurringFixture(t)
	defer cleanup()

	other := createTestUser(t, f.store, "other@example.com")

	_, err := f.svc.CreateTemplate(context.Background(), other.ID, CreateTemplateInput{
		AccountID:  f.account.ID,
		CategoryID: f.category.ID,
		Amount:     "1200.00",
		Currency:   "USD",
		DayOfMonth: 1,
	})
	if !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestApplyDue(t *testing.T) {
	f, cleanup := setupRecurringFixture(t)
	defer cleanup()

	if _, err := f.svc.CreateTemplate(context.Background(), f.user.ID, CreateTemplateInput{
		AccountID:   f.account.ID,
		CategoryID:  f.category.ID,
		Amount:      "1200.00",
		Currency:    "USD",
		DayOfMonth:  31,
		Description: "Monthly rent",
	}); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	// February clamps day 31 to the 28th.
	now := time.Date(2026, time.February, 10, 12, 0, 0, 0, time.UTC)
	applied, err := f.svc.ApplyDue(context.Background(), f.user.ID, now)
	if err != nil {
		t.Fatalf("ApplyDue failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("applied: expected 1, got %d", applied)
	}

	txns, total, err := f.store.ListTransactionsByAccount(context.Background(), f.account.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactionsByAccount failed: %v", err)
	}
	if total != 1 {
		t.Fatalf("expected 1 posted transaction, got %d", total)
	}
	if txns[0].Date != "2026-02-28" {
		t.Errorf("posting date: expected 2026-02-28, got %s", txns[0].Date)
	}
	if models.FormatAmount(txns[0].Amount) != "1200.00" {
		t.Errorf("amount: expected 1200.00, got %s", models.FormatAmount(txns[0].Amount))
	}
}

func TestApplyDue_Idempotent(t *testing.T) {
	f, cleanup := setupRecurringFixture(t)
	defer cleanup()

	if _, err := f.svc.CreateTemplate(context.Background(), f.user.ID, CreateTemplateInput{
		AccountID:  f.account.ID,
		CategoryID: f.category.ID,
		Amount:     "1200.00",
		Currency:   "USD",
		DayOfMonth: 1,
	}); err != nil {
		t.Fatalf("CreateTemplate failed: %v", err)
	}

	now := time.Date(2026, time.August, 5, 9, 0, 0, 0, time.UTC)

	applied, err := f.svc.ApplyDue(context.Background(), f.user.ID, now)
	if err != nil {
		t.Fatalf("first ApplyDue failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("first run: expected 1 applied, got %d", applied)
	}

	// Re-running within the same month posts nothing new.
	applied, err = f.svc.ApplyDue(context.Background(), f.user.ID, now.AddDate(0, 0, 10))
	if err != nil {
		t.Fatalf("second ApplyDue failed: %v", err)
	}
	if applied != 0 {
		t.Errorf("second run: expected 0 applied, got %d", applied)
	}

	_, total, err := f.store.ListTransactionsByAccount(context.Background(), f.account.ID, 10, 0)
	if err != nil {
		t.Fatalf("ListTransactionsByAccount failed: %v", err)
	}
	if total != 1 {
		t.Errorf("expected 1 posted transaction, got %d", total)
	}

	// A new month posts again.
	applied, err = f.svc.ApplyDue(context.Background(), f.user.ID, now.AddDate(0, 1, 0))
	if err != nil {
		t.Fatalf("third ApplyDue failed: %v", err)
	}
	if applied != 1 {
		t.Errorf("third run: expected 1 applied, got %d", applied)
	}
}
