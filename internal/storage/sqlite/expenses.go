package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

// CreateSharedExpense persists an expense and all its participant rows in
// one database transaction.
func (s *SQLiteStore) CreateSharedExpense(ctx context.Context, expense *models.SharedExpense) error {
	if expense.ID == "" {
		expense.ID = uuid.New().String()
	}
	if expense.CreatedAt == 0 {
		expense.CreatedAt = time.Now().Unix()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO shared_expenses (id, owner_id, amount, currency, category_id, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.OwnerID, amountText(expense.Amount), string(expense.Currency),
		expense.CategoryID, expense.Date, nullable(expense.Description), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert shared expense: %w", err)
	}

	for i := range expense.Participants {
		p := &expense.Participants[i]
		if p.ID == "" {
			p.ID = uuid.New().String()
		}
		p.SharedExpenseID = expense.ID
		if p.Status == "" {
			p.Status = models.ParticipantPending
		}
		if p.CreatedAt == 0 {
			p.CreatedAt = expense.CreatedAt
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO expense_participants (id, shared_expense_id, payer_id, share_amount, status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, p.SharedExpenseID, p.PayerID, amountText(p.ShareAmount), string(p.Status), p.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense participant: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// GetSharedExpense retrieves an expense with all its participants,
// soft-deleted rows included. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetSharedExpense(ctx context.Context, id string) (*models.SharedExpense, error) {
	expense, err := s.scanExpenseRow(s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, amount, currency, category_id, date, description, created_at, deleted_at, deleted_by
		 FROM shared_expenses WHERE id = ?`,
		id,
	))
	if err != nil || expense == nil {
		return expense, err
	}

	participants, err := s.loadParticipants(ctx, []string{expense.ID})
	if err != nil {
		return nil, err
	}
	expense.Participants = participants[expense.ID]

	return expense, nil
}

func (s *SQLiteStore) scanExpenseRow(row *sql.Row) (*models.SharedExpense, error) {
	expense := &models.SharedExpense{}
	var amount, currency string
	var description, deletedBy sql.NullString
	var deletedAt sql.NullInt64

	err := row.Scan(&expense.ID, &expense.OwnerID, &amount, &currency,
		&expense.CategoryID, &expense.Date, &description, &expense.CreatedAt,
		&deletedAt, &deletedBy)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get shared expense: %w", err)
	}

	parsed, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	expense.Amount = parsed
	expense.Currency = models.Currency(currency)
	if description.Valid {
		expense.Description = description.String
	}
	if deletedAt.Valid {
		expense.DeletedAt = deletedAt.Int64
	}
	if deletedBy.Valid {
		expense.DeletedBy = deletedBy.String
	}

	return expense, nil
}

// loadParticipants fetches all participant rows for a set of expense IDs,
// keyed by expense ID.
func (s *SQLiteStore) loadParticipants(ctx context.Context, expenseIDs []string) (map[string][]models.ExpenseParticipant, error) {
	result := make(map[string][]models.ExpenseParticipant, len(expenseIDs))
	if len(expenseIDs) == 0 {
		return result, nil
	}

	query := `SELECT id, shared_expense_id, payer_id, share_amount, status, paid_at, created_at, deleted_at, deleted_by
	          FROM expense_participants
	          WHERE shared_expense_id IN (?` + repeatPlaceholder(len(expenseIDs)-1) + `)
	          ORDER BY created_at, id`

	args := make([]interface{}, len(expenseIDs))
	for i, id := range expenseIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load participants: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		p, err := scanParticipant(rows.Scan)
		if err != nil {
			return nil, err
		}
		result[p.SharedExpenseID] = append(result[p.SharedExpenseID], *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return result, nil
}

// GetExpenseParticipant retrieves one share by ID, soft-deleted included.
// Returns (nil, nil) when absent.
func (s *SQLiteStore) GetExpenseParticipant(ctx context.Context, id string) (*models.ExpenseParticipant, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, shared_expense_id, payer_id, share_amount, status, paid_at, created_at, deleted_at, deleted_by
		 FROM expense_participants WHERE id = ?`,
		id,
	)

	p, err := scanParticipant(row.Scan)
	if err == errNoParticipant {
		return nil, nil
	}
	return p, err
}

var errNoParticipant = fmt.Errorf("participant row absent")

func scanParticipant(scan func(...interface{}) error) (*models.ExpenseParticipant, error) {
	p := &models.ExpenseParticipant{}
	var share, status string
	var deletedBy sql.NullString
	var paidAt, deletedAt sql.NullInt64

	err := scan(&p.ID, &p.SharedExpenseID, &p.PayerID, &share, &status,
		&paidAt, &p.CreatedAt, &deletedAt, &deletedBy)
	if err == sql.ErrNoRows {
		return nil, errNoParticipant
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan participant: %w", err)
	}

	parsed, err := parseAmount(share)
	if err != nil {
		return nil, err
	}
	p.ShareAmount = parsed
	p.Status = models.ParticipantStatus(status)
	if paidAt.Valid {
		p.PaidAt = paidAt.Int64
	}
	if deletedAt.Valid {
		p.DeletedAt = deletedAt.Int64
	}
	if deletedBy.Valid {
		p.DeletedBy = deletedBy.String
	}

	return p, nil
}

// MarkParticipantPaid flips one live share PENDING -> PAID. The WHERE
// clause is the concurrency guard: of two simultaneous calls exactly one
// matches the PENDING row, the other sees zero rows affected and gets
// false back.
func (s *SQLiteStore) MarkParticipantPaid(ctx context.Context, participantID string, paidAt int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE expense_participants
		 SET status = ?, paid_at = ?
		 WHERE id = ? AND status = ? AND deleted_at IS NULL`,
		string(models.ParticipantPaid), paidAt, participantID, string(models.ParticipantPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to mark participant paid: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}

	return affected > 0, nil
}

// SoftDeleteSharedExpense soft-deletes an expense and cascades to all its
// live participants in one database transaction. The root update is
// guarded on the expense being live with no PAID participant, so a share
// paid concurrently blocks the whole cancellation.
func (s *SQLiteStore) SoftDeleteSharedExpense(ctx context.Context, expenseID, deletedBy string, deletedAt int64) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE shared_expenses
		 SET deleted_at = ?, deleted_by = ?
		 WHERE id = ? AND deleted_at IS NULL
		   AND NOT EXISTS (
		       SELECT 1 FROM expense_participants
		       WHERE shared_expense_id = shared_expenses.id
		         AND status = ? AND deleted_at IS NULL
		   )`,
		deletedAt, deletedBy, expenseID, string(models.ParticipantPaid),
	)
	if err != nil {
		return false, fmt.Errorf("failed to soft-delete expense: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE expense_participants
		 SET deleted_at = ?, deleted_by = ?
		 WHERE shared_expense_id = ? AND deleted_at IS NULL`,
		deletedAt, deletedBy, expenseID,
	)
	if err != nil {
		return false, fmt.Errorf("failed to cascade soft-delete: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}

// ListSharedExpenses retrieves a page of live expenses the user owns or
// participates in, newest first, with participants attached.
func (s *SQLiteStore) ListSharedExpenses(ctx context.Context, userID string, filter storage.ExpenseFilter, limit, offset int) ([]*models.SharedExpense, int, error) {
	where := `e.deleted_at IS NULL
	          AND (e.owner_id = ? OR EXISTS (
	              SELECT 1 FROM expense_participants p
	              WHERE p.shared_expense_id = e.id AND p.payer_id = ? AND p.deleted_at IS NULL))`

	pendingExists := `EXISTS (
	    SELECT 1 FROM expense_participants p
	    WHERE p.shared_expense_id = e.id AND p.status = 'PENDING' AND p.deleted_at IS NULL)`

	switch filter {
	case storage.FilterPending:
		where += ` AND ` + pendingExists
	case storage.FilterSettled:
		where += ` AND NOT ` + pendingExists
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM shared_expenses e WHERE `+where,
		userID, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count shared expenses: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.id, e.owner_id, e.amount, e.currency, e.category_id, e.date, e.description, e.created_at, e.deleted_at, e.deleted_by
		 FROM shared_expenses e WHERE `+where+`
		 ORDER BY e.created_at DESC, e.id
		 LIMIT ? OFFSET ?`,
		userID, userID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list shared expenses: %w", err)
	}
	defer rows.Close()

	var expenses []*models.SharedExpense
	var ids []string
	for rows.Next() {
		expense := &models.SharedExpense{}
		var amount, currency string
		var description, deletedBy sql.NullString
		var deletedAt sql.NullInt64

		if err := rows.Scan(&expense.ID, &expense.OwnerID, &amount, &currency,
			&expense.CategoryID, &expense.Date, &description, &expense.CreatedAt,
			&deletedAt, &deletedBy); err != nil {
			return nil, 0, fmt.Errorf("failed to scan shared expense: %w", err)
		}

		parsed, err := parseAmount(amount)
		if err != nil {
			return nil, 0, err
		}
		expense.Amount = parsed
		expense.Currency = models.Currency(currency)
		if description.Valid {
			expense.Description = description.String
		}

		expenses = append(expenses, expense)
		ids = append(ids, expense.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate shared expenses: %w", err)
	}

	participants, err := s.loadParticipants(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for _, expense := range expenses {
		expense.Participants = participants[expense.ID]
	}

	return expenses, total, nil
}

// repeatPlaceholder returns a string of ", ?" repeated n times.
// Used for building IN clauses with multiple placeholders.
func repeatPlaceholder(n int) string {
	if n <= 0 {
		return ""
	}
	result := ""
	for i := 0; i < n; i++ {
		result += ", ?"
	}
	return result
}
