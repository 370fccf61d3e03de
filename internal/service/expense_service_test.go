package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

type expenseFixture struct {
	store    storage.Store
	svc      *ExpenseService
	owner    *models.User
	payerA   *models.User
	payerB   *models.User
	category *models.Category
}

func setupExpenseFixture(t *testing.T) (*expenseFixture, func()) {
	t.Helper()

	store, cleanup := setupTestStore(t)

	owner := createTestUser(t, store, "owner@example.com")

	f := &expenseFixture{
		store:    store,
		svc:      NewExpenseService(store),
		owner:    owner,
		payerA:   createTestUser(t, store, "payer-a@example.com"),
		payerB:   createTestUser(t, store, "payer-b@example.com"),
		category: createTestCategory(t, store, owner.ID, "Dining"),
	}
	return f, cleanup
}

func (f *expenseFixture) createExpense(t *testing.T, amount string, shares ...ShareInput) *models.SharedExpense {
	t.Helper()

	expense, err := f.svc.Create(context.Background(), f.owner.ID, CreateExpenseInput{
		Amount:       amount,
		Currency:     "USD",
		CategoryID:   f.category.ID,
		Date:         "2026-08-20",
		Description:  "Team dinner",
		Participants: shares,
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	return expense
}

func TestCreateExpense(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "100.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "33.33"},
		ShareInput{PayerID: f.payerB.ID, ShareAmount: "33.33"},
		ShareInput{PayerID: f.owner.ID, ShareAmount: "33.34"},
	)

	if expense.ID == "" {
		t.Error("expected non-empty expense ID")
	}
	if len(expense.Participants) != 3 {
		t.Fatalf("participants: expected 3, got %d", len(expense.Participants))
	}
	for i := range expense.Participants {
		p := &expense.Participants[i]
		if p.ID == "" {
			t.Error("expected non-empty participant ID")
		}
		if p.Status != models.ParticipantPending {
			t.Errorf("participant status: expected PENDING, got %s", p.Status)
		}
	}
}

func TestCreateExpense_ShareSumMismatch(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	// 33.33 * 3 = 99.99, one cent short of 100.00.
	_, err := f.svc.Create(context.Background(), f.owner.ID, CreateExpenseInput{
		Amount:     "100.00",
		Currency:   "USD",
		CategoryID: f.category.ID,
		Date:       "2026-08-20",
		Participants: []ShareInput{
			{PayerID: f.payerA.ID, ShareAmount: "33.33"},
			{PayerID: f.payerB.ID, ShareAmount: "33.33"},
			{PayerID: f.owner.ID, ShareAmount: "33.33"},
		},
	})
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateExpense_FieldValidation(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	_, err := f.svc.Create(context.Background(), f.owner.ID, CreateExpenseInput{
		Amount:     "10.005",
		Currency:   "JPY",
		CategoryID: "",
		Date:       "2026/08/20",
	})
	if err == nil {
		t.Fatal("expected validation error")
	}

	var v *errs.Validation
	if !errors.As(err, &v) {
		t.Fatalf("expected *errs.Validation, got %T", err)
	}
	for _, field := range []string{"amount", "currency", "categoryId", "date", "participants"} {
		if v.FieldErrors[field] == "" {
			t.Errorf("expected field error for %q", field)
		}
	}
}

func TestMarkParticipantPaid(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "90.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
		ShareInput{PayerID: f.payerB.ID, ShareAmount: "30.00"},
		ShareInput{PayerID: f.owner.ID, ShareAmount: "30.00"},
	)

	result, err := f.svc.MarkParticipantPaid(context.Background(), expense.Participants[0].ID, f.owner.ID)
	if err != nil {
		t.Fatalf("MarkParticipantPaid failed: %v", err)
	}
	if result.Status != models.ParticipantPaid {
		t.Errorf("status: expected PAID, got %s", result.Status)
	}
	if result.PaidAt == 0 {
		t.Error("expected non-zero PaidAt")
	}

	// The other share stays PENDING.
	other, err := f.store.GetExpenseParticipant(context.Background(), expense.Participants[1].ID)
	if err != nil {
		t.Fatalf("GetExpenseParticipant failed: %v", err)
	}
	if other.Status != models.ParticipantPending {
		t.Errorf("sibling share flipped: %s", other.Status)
	}
}

func TestMarkParticipantPaid_NotOwner(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "30.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
	)

	// Even the payer of the share cannot settle it, only the owner.
	_, err := f.svc.MarkParticipantPaid(context.Background(), expense.Participants[0].ID, f.payerA.ID)
	if !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestMarkParticipantPaid_NotFound(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	_, err := f.svc.MarkParticipantPaid(context.Background(), "nonexistent-id", f.owner.ID)
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestMarkParticipantPaid_Twice(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "30.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
	)
	participantID := expense.Participants[0].ID

	if _, err := f.svc.MarkParticipantPaid(context.Background(), participantID, f.owner.ID); err != nil {
		t.Fatalf("first MarkParticipantPaid failed: %v", err)
	}

	_, err := f.svc.MarkParticipantPaid(context.Background(), participantID, f.owner.ID)
	if err == nil {
		t.Fatal("expected error on second settlement")
	}
	if err.Error() != "participant share already paid" {
		t.Errorf("message: expected 'participant share already paid', got '%s'", err.Error())
	}
}

func TestMarkParticipantPaid_Concurrent(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "30.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
	)
	participantID := expense.Participants[0].ID

	const attempts = 8
	var wg sync.WaitGroup
	errCh := make(chan error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.MarkParticipantPaid(context.Background(), participantID, f.owner.ID)
			errCh <- err
		}()
	}
	wg.Wait()
	close(errCh)

	successes := 0
	for err := range errCh {
		if err == nil {
			successes++
		} else if !errs.IsValidation(err) {
			t.Errorf("unexpected error kind: %v", err)
		}
	}
	if successes != 1 {
		t.Errorf("expected exactly 1 successful settlement, got %d", successes)
	}

	current, err := f.store.GetExpenseParticipant(context.Background(), participantID)
	if err != nil {
		t.Fatalf("GetExpenseParticipant failed: %v", err)
	}
	if current.Status != models.ParticipantPaid {
		t.Errorf("status: expected PAID, got %s", current.Status)
	}
}

func TestCancelExpense(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "60.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
		ShareInput{PayerID: f.payerB.ID, ShareAmount: "30.00"},
	)

	if err := f.svc.Cancel(context.Background(), expense.ID, f.owner.ID); err != nil {
		t.Fatalf("Cancel failed: %v", err)
	}

	// The soft-delete cascades to every share.
	current, err := f.store.GetSharedExpense(context.Background(), expense.ID)
	if err != nil {
		t.Fatalf("GetSharedExpense failed: %v", err)
	}
	if !current.Deleted() {
		t.Error("expected expense to be soft-deleted")
	}
	if current.DeletedBy != f.owner.ID {
		t.Errorf("DeletedBy: expected %s, got %s", f.owner.ID, current.DeletedBy)
	}
	for i := range current.Participants {
		if !current.Participants[i].Deleted() {
			t.Errorf("participant %s not soft-deleted", current.Participants[i].ID)
		}
	}

	// Cancelled expenses disappear from listings.
	page, err := f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected 0 listed expenses, got %d", page.Total)
	}
}

func TestCancelExpense_NotOwner(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "30.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
	)

	err := f.svc.Cancel(context.Background(), expense.ID, f.payerA.ID)
	if !errs.IsForbidden(err) {
		t.Fatalf("expected forbidden error, got %v", err)
	}
}

func TestCancelExpense_AfterPaid(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "60.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
		ShareInput{PayerID: f.payerB.ID, ShareAmount: "30.00"},
	)

	if _, err := f.svc.MarkParticipantPaid(context.Background(), expense.Participants[0].ID, f.owner.ID); err != nil {
		t.Fatalf("MarkParticipantPaid failed: %v", err)
	}

	err := f.svc.Cancel(context.Background(), expense.ID, f.owner.ID)
	if err == nil {
		t.Fatal("expected error cancelling a partially paid expense")
	}
	want := "Cannot cancel expense when participants have already paid"
	if err.Error() != want {
		t.Errorf("message: expected '%s', got '%s'", want, err.Error())
	}

	// The expense stays live.
	current, getErr := f.store.GetSharedExpense(context.Background(), expense.ID)
	if getErr != nil {
		t.Fatalf("GetSharedExpense failed: %v", getErr)
	}
	if current.Deleted() {
		t.Error("expense was soft-deleted despite a paid share")
	}
}

func TestCancelExpense_Twice(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "30.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
	)

	if err := f.svc.Cancel(context.Background(), expense.ID, f.owner.ID); err != nil {
		t.Fatalf("first Cancel failed: %v", err)
	}

	err := f.svc.Cancel(context.Background(), expense.ID, f.owner.ID)
	if !errs.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestListExpenses_StatusFilter(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	pending := f.createExpense(t, "30.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
	)
	settled := f.createExpense(t, "40.00",
		ShareInput{PayerID: f.payerB.ID, ShareAmount: "40.00"},
	)
	if _, err := f.svc.MarkParticipantPaid(context.Background(), settled.Participants[0].ID, f.owner.ID); err != nil {
		t.Fatalf("MarkParticipantPaid failed: %v", err)
	}

	page, err := f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{Status: "pending"})
	if err != nil {
		t.Fatalf("List pending failed: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != pending.ID {
		t.Errorf("pending filter: expected only %s, got %d items", pending.ID, len(page.Items))
	}

	page, err = f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{Status: "settled"})
	if err != nil {
		t.Fatalf("List settled failed: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 || page.Items[0].ID != settled.ID {
		t.Errorf("settled filter: expected only %s, got %d items", settled.ID, len(page.Items))
	}

	page, err = f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{Status: "all"})
	if err != nil {
		t.Fatalf("List all failed: %v", err)
	}
	if page.Total != 2 {
		t.Errorf("all filter: expected 2, got %d", page.Total)
	}
}

func TestListExpenses_Pagination(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	for i := 0; i < 3; i++ {
		f.createExpense(t, "30.00",
			ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
		)
	}

	page, err := f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{Limit: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 2 {
		t.Errorf("page size: expected 2, got %d", len(page.Items))
	}
	if page.Total != 3 {
		t.Errorf("total: expected 3, got %d", page.Total)
	}
	if !page.HasMore {
		t.Error("expected HasMore on first page")
	}

	page, err = f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{Limit: 2, Offset: 2})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(page.Items) != 1 {
		t.Errorf("last page size: expected 1, got %d", len(page.Items))
	}
	if page.HasMore {
		t.Error("expected HasMore false on last page")
	}
}

func TestListExpenses_ParticipantVisibility(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	expense := f.createExpense(t, "30.00",
		ShareInput{PayerID: f.payerA.ID, ShareAmount: "30.00"},
	)

	// A participant sees the expense without owning it.
	page, err := f.svc.List(context.Background(), f.payerA.ID, ListExpensesInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 1 || page.Items[0].ID != expense.ID {
		t.Errorf("expected participant to see expense %s", expense.ID)
	}

	// An unrelated user sees nothing.
	page, err = f.svc.List(context.Background(), f.payerB.ID, ListExpensesInput{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if page.Total != 0 {
		t.Errorf("expected unrelated user to see 0 expenses, got %d", page.Total)
	}
}

func TestListExpenses_BadInput(t *testing.T) {
	f, cleanup := setupExpenseFixture(t)
	defer cleanup()

	if _, err := f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{Status: "open"}); !errs.IsValidation(err) {
		t.Errorf("bad status: expected validation error, got %v", err)
	}
	if _, err := f.svc.List(context.Background(), f.owner.ID, ListExpensesInput{Limit: -1}); !errs.IsValidation(err) {
		t.Errorf("negative limit: expected validation error, got %v", err)
	}
}
