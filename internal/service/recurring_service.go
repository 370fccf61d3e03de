package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

// RecurringService manages recurring transaction templates and their
// once-per-month application.
type RecurringService struct {
	store storage.Store
}

// NewRecurringService creates a new RecurringService with the given
// storage backend.
func NewRecurringService(store storage.Store) *RecurringService {
	return &RecurringService{store: store}
}

// CreateTemplateInput carries the wire-form fields for a new template.
type CreateTemplateInput struct {
	AccountID   string
	CategoryID  string
	Amount      string
	Currency    string
	DayOfMonth  int
	Description string
}

// CreateTemplate validates and persists a template. The target account
// must belong to the caller.
func (s *RecurringService) CreateTemplate(ctx context.Context, userID string, in CreateTemplateInput) (*models.RecurringTemplate, error) {
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
	if in.DayOfMonth < 1 || in.DayOfMonth > 31 {
		fields["dayOfMonth"] = "dayOfMonth must be between 1 and 31"
	}
	if in.CategoryID == "" {
		fields["categoryId"] = "categoryId is required"
	}
	if len(fields) > 0 {
		return nil, errs.NewFieldValidation(fields)
	}

	account, err := s.store.GetAccount(ctx, in.AccountID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if account == nil || account.UserID != userID {
		return nil, errs.AccessDenied()
	}

	tmpl := &models.RecurringTemplate{
		UserID:      userID,
		AccountID:   in.AccountID,
		CategoryID:  in.CategoryID,
		Amount:      amount,
		Currency:    currency,
		DayOfMonth:  in.DayOfMonth,
		Description: in.Description,
	}
	if err := s.store.CreateRecurringTemplate(ctx, tmpl); err != nil {
		slog.Error("CreateRecurringTemplate failed", "error", err)
		return nil, errs.NewServer(err)
	}

	slog.Info("Recurring template created", "template_id", tmpl.ID, "user_id", userID)
	return tmpl, nil
}

// ListTemplates returns the caller's templates.
func (s *RecurringService) ListTemplates(ctx context.Context, userID string) ([]*models.RecurringTemplate, error) {
	templates, err := s.store.ListRecurringTemplatesByUser(ctx, userID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	return templates, nil
}

// ApplyDue posts the caller's templates for the month containing now.
// Each (template, month) pair is applied at most once no matter how many
// times this runs; the return value counts the templates actually posted
// this call.
func (s *RecurringService) ApplyDue(ctx context.Context, userID string, now time.Time) (int, error) {
	templates, err := s.store.ListRecurringTemplatesByUser(ctx, userID)
	if err != nil {
		return 0, errs.NewServer(err)
	}

	month := now.Format("2006-01")
	applied := 0
	for _, tmpl := range templates {
		post := &models.Transaction{
			AccountID:   tmpl.AccountID,
			CategoryID:  tmpl.CategoryID,
			Amount:      tmpl.Amount,
			Currency:    tmpl.Currency,
			Date:        postingDate(now, tmpl.DayOfMonth),
			Description: tmpl.Description,
		}

		ok, err := s.store.ApplyRecurringTemplate(ctx, tmpl.ID, month, post)
		if err != nil {
			slog.Error("ApplyRecurringTemplate failed", "template_id", tmpl.ID, "error", err)
			return applied, errs.NewServer(err)
		}
		if ok {
			applied++
		}
	}

	if applied > 0 {
		slog.Info("Recurring templates applied", "user_id", userID, "month", month, "count", applied)
	}
	return applied, nil
}

// postingDate builds the template's posting date within now's month,
// clamping the day to the month's last day.
func postingDate(now time.Time, day int) string {
	firstOfNext := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, 1, 0)
	lastDay := firstOfNext.AddDate(0, 0, -1).Day()
	if day > lastDay {
		day = lastDay
	}
	return time.Date(now.Year(), now.Month(), day, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
}
