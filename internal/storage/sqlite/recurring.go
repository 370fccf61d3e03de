package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adigold/splitbook/internal/models"
)

// CreateRecurringTemplate persists a new template.
func (s *SQLiteStore) CreateRecurringTemplate(ctx context.Context, tmpl *models.RecurringTemplate) error {
	if tmpl.ID == "" {
		tmpl.ID = uuid.New().String()
	}
	if tmpl.CreatedAt == 0 {
		tmpl.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO recurring_templates (id, user_id, account_id, category_id, amount, currency, day_of_month, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		tmpl.ID, tmpl.UserID, tmpl.AccountID, tmpl.CategoryID,
		amountText(tmpl.Amount), string(tmpl.Currency), tmpl.DayOfMonth,
		nullable(tmpl.Description), tmpl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert recurring template: %w", err)
	}

	return nil
}

// ListRecurringTemplatesByUser retrieves a user's templates.
func (s *SQLiteStore) ListRecurringTemplatesByUser(ctx context.Context, userID string) ([]*models.RecurringTemplate, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, account_id, category_id, amount, currency, day_of_month, description, created_at
		 FROM recurring_templates WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list recurring templates: %w", err)
	}
	defer rows.Close()

	var templates []*models.RecurringTemplate
	for rows.Next() {
		tmpl := &models.RecurringTemplate{}
		var amount, currency string
		var description sql.NullString

		if err := rows.Scan(&tmpl.ID, &tmpl.UserID, &tmpl.AccountID, &tmpl.CategoryID,
			&amount, &currency, &tmpl.DayOfMonth, &description, &tmpl.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recurring template: %w", err)
		}

		parsed, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}
		tmpl.Amount = parsed
		tmpl.Currency = models.Currency(currency)
		if description.Valid {
			tmpl.Description = description.String
		}

		templates = append(templates, tmpl)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recurring templates: %w", err)
	}

	return templates, nil
}

// ApplyRecurringTemplate records the application of a template for one
// "YYYY-MM" month and posts the ledger transaction atomically. The
// recurring_applications primary key makes the month idempotent: an
// already-applied month leaves the insert with zero affected rows and the
// whole database transaction rolls back, ledger row included.
func (s *SQLiteStore) ApplyRecurringTemplate(ctx context.Context, templateID, month string, post *models.Transaction) (bool, error) {
	if post.ID == "" {
		post.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// The ledger row goes in first so the application row's foreign key
	// resolves; an already-applied month rolls both back.
	if err := insertTransaction(ctx, tx, post); err != nil {
		return false, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO recurring_applications (template_id, month, transaction_id, applied_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT (template_id, month) DO NOTHING`,
		templateID, month, post.ID, time.Now().Unix(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to record template application: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
