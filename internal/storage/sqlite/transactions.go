package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/adigold/splitbook/internal/models"
)

// CreateTransaction posts a single ledger transaction.
func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, category_id, amount, currency, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.AccountID, txn.CategoryID, amountText(txn.Amount),
		string(txn.Currency), txn.Date, nullable(txn.Description), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// insertTransaction writes a ledger row inside an open database transaction.
// Used by the composite operations that must post atomically with another
// status change.
func insertTransaction(ctx context.Context, tx *sql.Tx, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (id, account_id, category_id, amount, currency, date, description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.AccountID, txn.CategoryID, amountText(txn.Amount),
		string(txn.Currency), txn.Date, nullable(txn.Description), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}

	return nil
}

// ListTransactionsByAccount retrieves a page of an account's transactions,
// newest date first, with the total row count.
func (s *SQLiteStore) ListTransactionsByAccount(ctx context.Context, accountID string, limit, offset int) ([]*models.Transaction, int, error) {
	var total int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM transactions WHERE account_id = ?`, accountID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, account_id, category_id, amount, currency, date, description, created_at
		 FROM transactions WHERE account_id = ?
		 ORDER BY date DESC, created_at DESC
		 LIMIT ? OFFSET ?`,
		accountID, limit, offset,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, err
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return txns, total, nil
}

func scanTransaction(rows *sql.Rows) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var amount, currency string
	var description sql.NullString

	if err := rows.Scan(&txn.ID, &txn.AccountID, &txn.CategoryID, &amount,
		&currency, &txn.Date, &description, &txn.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan transaction: %w", err)
	}

	parsed, err := parseAmount(amount)
	if err != nil {
		return nil, err
	}
	txn.Amount = parsed
	txn.Currency = models.Currency(currency)
	if description.Valid {
		txn.Description = description.String
	}

	return txn, nil
}

// MonthlyCategoryTotals aggregates a user's posted transactions for one
// "YYYY-MM" month into per-category totals. The summation is done in Go
// with decimals rather than in SQL, which would coerce the stored text
// amounts to floats.
func (s *SQLiteStore) MonthlyCategoryTotals(ctx context.Context, userID, month string) ([]*models.CategoryTotal, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT c.id, c.name, c.kind, t.amount
		 FROM transactions t
		 JOIN accounts a ON a.id = t.account_id
		 JOIN categories c ON c.id = t.category_id
		 WHERE a.user_id = ? AND t.date LIKE ? || '-%'
		 ORDER BY c.name`,
		userID, month,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly totals: %w", err)
	}
	defer rows.Close()

	byCategory := make(map[string]*models.CategoryTotal)
	var order []string
	for rows.Next() {
		var id, name, kind, amount string
		if err := rows.Scan(&id, &name, &kind, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan monthly total row: %w", err)
		}

		parsed, err := parseAmount(amount)
		if err != nil {
			return nil, err
		}

		total, ok := byCategory[id]
		if !ok {
			total = &models.CategoryTotal{
				CategoryID:   id,
				CategoryName: name,
				Kind:         models.CategoryKind(kind),
				Total:        decimal.Zero,
			}
			byCategory[id] = total
			order = append(order, id)
		}
		total.Total = total.Total.Add(parsed)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly totals: %w", err)
	}

	totals := make([]*models.CategoryTotal, len(order))
	for i, id := range order {
		totals[i] = byCategory[id]
	}
	return totals, nil
}
