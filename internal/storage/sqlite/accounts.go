package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/adigold/splitbook/internal/models"
)

// CreateAccount inserts a new account.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	if account.CreatedAt == 0 {
		account.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO accounts (id, user_id, name, currency, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		account.ID, account.UserID, account.Name, string(account.Currency), account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}

	return nil
}

// GetAccount retrieves an account by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	var currency string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, currency, created_at FROM accounts WHERE id = ?`,
		id,
	).Scan(&account.ID, &account.UserID, &account.Name, &currency, &account.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account.Currency = models.Currency(currency)
	return account, nil
}

// ListAccountsByUser retrieves all accounts owned by a user.
func (s *SQLiteStore) ListAccountsByUser(ctx context.Context, userID string) ([]*models.Account, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, currency, created_at
		 FROM accounts WHERE user_id = ? ORDER BY created_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*models.Account
	for rows.Next() {
		account := &models.Account{}
		var currency string
		if err := rows.Scan(&account.ID, &account.UserID, &account.Name, &currency, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.Currency = models.Currency(currency)
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate accounts: %w", err)
	}

	return accounts, nil
}

// CreateCategory inserts a new category.
func (s *SQLiteStore) CreateCategory(ctx context.Context, category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if category.CreatedAt == 0 {
		category.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO categories (id, user_id, name, kind, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		category.ID, category.UserID, category.Name, string(category.Kind), category.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}

	return nil
}

// GetCategory retrieves a category by ID. Returns (nil, nil) when absent.
func (s *SQLiteStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	category := &models.Category{}
	var kind string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, user_id, name, kind, created_at FROM categories WHERE id = ?`,
		id,
	).Scan(&category.ID, &category.UserID, &category.Name, &kind, &category.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get category: %w", err)
	}

	category.Kind = models.CategoryKind(kind)
	return category, nil
}

// ListCategoriesByUser retrieves all categories owned by a user.
func (s *SQLiteStore) ListCategoriesByUser(ctx context.Context, userID string) ([]*models.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, user_id, name, kind, created_at
		 FROM categories WHERE user_id = ? ORDER BY name`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	var categories []*models.Category
	for rows.Next() {
		category := &models.Category{}
		var kind string
		if err := rows.Scan(&category.ID, &category.UserID, &category.Name, &kind, &category.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		category.Kind = models.CategoryKind(kind)
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}

	return categories, nil
}
