package service

import (
	"context"
	"os"
	"testing"

	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
	"github.com/adigold/splitbook/internal/storage/sqlite"
)

// setupTestStore creates a SQLite store backed by a temp file.
func setupTestStore(t *testing.T) (storage.Store, func()) {
	t.Helper()

	tmpFile, err := os.CreateTemp("", "test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpFile.Close()

	store, err := sqlite.New(tmpFile.Name())
	if err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to create store: %v", err)
	}

	cleanup := func() {
		store.Close()
		os.Remove(tmpFile.Name())
	}

	return store, cleanup
}

func createTestUser(t *testing.T, store storage.Store, email string) *models.User {
	t.Helper()

	user := models.NewUser(email, email, "not-a-real-hash")
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("failed to create user %s: %v", email, err)
	}
	return user
}

func createTestAccount(t *testing.T, store storage.Store, userID, name string) *models.Account {
	t.Helper()

	account := &models.Account{
		UserID:   userID,
		Name:     name,
		Currency: models.USD,
	}
	if err := store.CreateAccount(context.Background(), account); err != nil {
		t.Fatalf("failed to create account %s: %v", name, err)
	}
	return account
}

func createTestCategory(t *testing.T, store storage.Store, userID, name string) *models.Category {
	t.Helper()

	category := &models.Category{
		UserID: userID,
		Name:   name,
		Kind:   models.CategoryExpense,
	}
	if err := store.CreateCategory(context.Background(), category); err != nil {
		t.Fatalf("failed to create category %s: %v", name, err)
	}
	return category
}
