package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adigold/splitbook/internal/models"
)

// CreateTransactionRequest persists a new PENDING request.
func (s *SQLiteStore) CreateTransactionRequest(ctx context.Context, req *models.TransactionRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.CreatedAt == 0 {
		req.CreatedAt = time.Now().Unix()
	}
	if req.Status == "" {
		req.Status = models.RequestPending
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transaction_requests
		 (id, from_account_id, to_account_id, category_id, amount, currency, date, description, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.FromAccountID, req.ToAccountID, req.CategoryID,
		amountText(req.Amount), string(req.Currency), req.Date,
		nullable(req.Description), string(req.Status), req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction request: %w", err)
	}

	return nil
}

// GetTransactionRequest retrieves a request by ID. Returns (nil, nil) when
// absent.
func (s *SQLiteStore) GetTransactionRequest(ctx context.Context, id string) (*models.TransactionRequest, error) {
	req := &models.TransactionRequest{}
	var amount, currency, status string
	var description sql.NullString

	err := s.db.QueryRowContext(ctx,
		`SELECT id, from_account_id, to_account_id, category_id, amount, currency, date, description, status, created_at
		 FROM transaction_requests WHERE id = ?`,
		id,
	).Scan(&req.ID, &req.FromAccountID, &req.ToAccountID, &req.CategoryID,
		&amount, &currency, &req.Date, &description, &status, &req.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction request: %w", err)
	}

	parsed, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	req.Amount = parsed
	req.Currency = models.Currency(currency)
	req.Status = models.RequestStatus(status)
	if description.Valid {
		req.Description = description.String
	}

	return req, nil
}

// SettleTransactionRequest moves a request out of PENDING and, when post is
// non-nil, posts the ledger transaction in the same database transaction.
// The status change is guarded on the row still being PENDING: a request
// already settled by a concurrent caller leaves the guard unmatched and the
// whole operation becomes a no-op returning false. If the ledger insert
// fails, the status change is rolled back with it.
func (s *SQLiteStore) SettleTransactionRequest(ctx context.Context, id string, status models.RequestStatus, post *models.Transaction) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`UPDATE transaction_requests SET status = ? WHERE id = ? AND status = ?`,
		string(status), id, string(models.RequestPending),
	)
	if err != nil {
		return false, fmt.Errorf("failed to update request status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	if post != nil {
		if err := insertTransaction(ctx, tx, post); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return true, nil
}
