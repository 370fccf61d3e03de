package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/split"
	"github.com/adigold/splitbook/internal/storage"
)

// maxPageSize caps the page size of expense listings.
const (
	maxPageSize     = 100
	defaultPageSize = 50
)

// ExpenseService implements shared-expense settlement: an owner splits an
// expense into participant shares, marks shares paid one at a time, and
// may cancel the whole expense as long as nobody has paid.
type ExpenseService struct {
	store storage.Store
}

// NewExpenseService creates a new ExpenseService with the given storage
// backend.
func NewExpenseService(store storage.Store) *ExpenseService {
	return &ExpenseService{store: store}
}

// ShareInput is one participant's share in wire form.
type ShareInput struct {
	PayerID     string
	ShareAmount string
}

// CreateExpenseInput carries the wire-form fields for a new shared
// expense.
type CreateExpenseInput struct {
	Amount       string
	Currency     string
	CategoryID   string
	Date         string
	Description  string
	Participants []ShareInput
}

// Create validates the input and persists the expense with all its
// participant shares. The shares must sum to the expense amount exactly.
func (s *ExpenseService) Create(ctx context.Context, ownerUserID string, in CreateExpenseInput) (*models.SharedExpense, error) {
	fields := make(map[string]string)

	amount, err := models.ParseAmount(in.Amount)
	if err != nil {
		fields["amount"] = err.Error()
	} else if amount.Sign() <= 0 {
		fields["amount"] = "amount must be positive"
	}

	currency := models.Currency(in.Currency)
	if !currency.Valid() {
		fields["currency"] = "currency must be one of USD, EUR, ILS"
	}

	if err := models.ValidateDate(in.Date); err != nil {
		fields["date"] = err.Error()
	}
	if in.CategoryID == "" {
		fields["categoryId"] = "categoryId is required"
	}
	if len(in.Participants) == 0 {
		fields["participants"] = "at least one participant is required"
	}

	shares := make([]decimal.Decimal, 0, len(in.Participants))
	for _, p := range in.Participants {
		if p.PayerID == "" {
			fields["participants"] = "every participant needs a payerId"
			break
		}
		share, err := models.ParseAmount(p.ShareAmount)
		if err != nil {
			fields["participants"] = err.Error()
			break
		}
		shares = append(shares, share)
	}

	if len(fields) > 0 {
		return nil, errs.NewFieldValidation(fields)
	}

	if err := split.ValidateShares(amount, shares); err != nil {
		return nil, errs.NewValidation("%s", err.Error())
	}

	category, err := s.store.GetCategory(ctx, in.CategoryID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if category == nil {
		return nil, errs.NewNotFound("category", in.CategoryID)
	}

	expense := &models.SharedExpense{
		OwnerID:     ownerUserID,
		Amount:      amount,
		Currency:    currency,
		CategoryID:  in.CategoryID,
		Date:        in.Date,
		Description: in.Description,
	}
	for i, p := range in.Participants {
		expense.Participants = append(expense.Participants, models.ExpenseParticipant{
			PayerID:     p.PayerID,
			ShareAmount: shares[i],
			Status:      models.ParticipantPending,
		})
	}

	if err := s.store.CreateSharedExpense(ctx, expense); err != nil {
		slog.Error("CreateSharedExpense failed", "error", err)
		return nil, errs.NewServer(err)
	}

	slog.Info("Shared expense created",
		"expense_id", expense.ID,
		"owner_id", ownerUserID,
		"amount", models.FormatAmount(expense.Amount),
		"participants", len(expense.Participants),
	)
	return expense, nil
}

// ParticipantResult is the caller-facing outcome of a settlement.
type ParticipantResult struct {
	ID     string
	Status models.ParticipantStatus
	PaidAt int64
}

// MarkParticipantPaid settles one share. Only the expense owner may call
// it, and only a PENDING share can settle. The update carries a
// WHERE status = PENDING guard, so of two concurrent calls exactly one
// flips the row; the other observes zero affected rows and reports the
// already-applied state instead of silently succeeding.
func (s *ExpenseService) MarkParticipantPaid(ctx context.Context, participantID, callerUserID string) (*ParticipantResult, error) {
	participant, err := s.store.GetExpenseParticipant(ctx, participantID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if participant == nil || participant.Deleted() {
		return nil, errs.NewNotFound("participant", participantID)
	}

	expense, err := s.store.GetSharedExpense(ctx, participant.SharedExpenseID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if expense == nil || expense.Deleted() {
		return nil, errs.NewNotFound("participant", participantID)
	}

	if expense.OwnerID != callerUserID {
		return nil, errs.AccessDenied()
	}

	if participant.Status != models.ParticipantPending {
		return nil, alreadyInState(participant.Status)
	}

	paidAt := time.Now().Unix()
	applied, err := s.store.MarkParticipantPaid(ctx, participantID, paidAt)
	if err != nil {
		slog.Error("MarkParticipantPaid failed", "participant_id", participantID, "error", err)
		return nil, errs.NewServer(err)
	}
	if !applied {
		// Lost the race: re-read so the error names the applied state.
		current, err := s.store.GetExpenseParticipant(ctx, participantID)
		if err != nil || current == nil {
			return nil, errs.NewNotFound("participant", participantID)
		}
		if current.Deleted() {
			return nil, errs.NewNotFound("participant", participantID)
		}
		return nil, alreadyInState(current.Status)
	}

	slog.Info("Participant share settled",
		"participant_id", participantID,
		"expense_id", expense.ID,
		"user_id", callerUserID,
	)
	return &ParticipantResult{
		ID:     participantID,
		Status: models.ParticipantPaid,
		PaidAt: paidAt,
	}, nil
}

// Cancel soft-deletes an expense and cascades the soft-delete to all its
// shares. Cancellation is owner-only and blocked as soon as any share is
// PAID; the storage guard re-checks that condition atomically so a share
// paid mid-flight blocks the cancel as well.
func (s *ExpenseService) Cancel(ctx context.Context, expenseID, callerUserID string) error {
	expense, err := s.store.GetSharedExpense(ctx, expenseID)
	if err != nil {
		return errs.NewServer(err)
	}
	if expense == nil || expense.Deleted() {
		return errs.NewNotFound("shared expense", expenseID)
	}

	if expense.OwnerID != callerUserID {
		return errs.AccessDenied()
	}

	for i := range expense.Participants {
		p := &expense.Participants[i]
		if !p.Deleted() && p.Status == models.ParticipantPaid {
			return errCancelPaid()
		}
	}

	applied, err := s.store.SoftDeleteSharedExpense(ctx, expenseID, callerUserID, time.Now().Unix())
	if err != nil {
		slog.Error("SoftDeleteSharedExpense failed", "expense_id", expenseID, "error", err)
		return errs.NewServer(err)
	}
	if !applied {
		// The guard failed between our read and the update: either a
		// share was just paid or the expense was cancelled concurrently.
		current, err := s.store.GetSharedExpense(ctx, expenseID)
		if err != nil || current == nil || current.Deleted() {
			return errs.NewNotFound("shared expense", expenseID)
		}
		return errCancelPaid()
	}

	slog.Info("Shared expense cancelled", "expense_id", expenseID, "user_id", callerUserID)
	return nil
}

// ListExpensesInput selects and pages a user's shared expenses.
type ListExpensesInput struct {
	// Status is "pending", "settled" or "all" ("" means all).
	Status string
	// Limit is the page size; 0 means the default of 50, capped at 100.
	Limit int
	// Offset is the number of rows to skip.
	Offset int
}

// ExpensePage is one page of expense listings.
type ExpensePage struct {
	Items   []*models.SharedExpense
	Total   int
	HasMore bool
}

// List returns a page of live expenses the user owns or participates in.
// The status filter works on the derived settlement state: pending means
// at least one share is still PENDING, settled means none is.
func (s *ExpenseService) List(ctx context.Context, userID string, in ListExpensesInput) (*ExpensePage, error) {
	var filter storage.ExpenseFilter
	switch in.Status {
	case "", "all":
		filter = storage.FilterAll
	case "pending":
		filter = storage.FilterPending
	case "settled":
		filter = storage.FilterSettled
	default:
		return nil, errs.NewFieldValidation(map[string]string{
			"status": "status must be pending, settled or all",
		})
	}

	if in.Limit < 0 || in.Offset < 0 {
		return nil, errs.NewFieldValidation(map[string]string{
			"limit": "limit and offset must not be negative",
		})
	}
	limit := in.Limit
	if limit == 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, total, err := s.store.ListSharedExpenses(ctx, userID, filter, limit, in.Offset)
	if err != nil {
		slog.Error("ListSharedExpenses failed", "user_id", userID, "error", err)
		return nil, errs.NewServer(err)
	}

	return &ExpensePage{
		Items:   items,
		Total:   total,
		HasMore: in.Offset+len(items) < total,
	}, nil
}

func alreadyInState(status models.ParticipantStatus) *errs.Validation {
	return errs.NewValidation("participant share already %s", strings.ToLower(string(status)))
}

func errCancelPaid() *errs.Validation {
	return errs.NewValidation("Cannot cancel expense when participants have already paid")
}
