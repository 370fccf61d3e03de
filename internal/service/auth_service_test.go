package service

import (
	"context"
	"testing"
	"time"

	"github.com/adigold/splitbook/internal/auth"
	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/storage"
)

func setupAuthService(t *testing.T) (*AuthService, storage.Store, func()) {
	t.Helper()

	store, cleanup := setupTestStore(t)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(auth.NewPasswordAuthenticator(store), jwtManager, store)
	return svc, store, cleanup
}

func TestRegister(t *testing.T) {
	svc, _, cleanup := setupAuthService(t)
	defer cleanup()

	session, err := svc.Register(context.Background(), "alice@example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if session.Token == "" {
		t.Error("expected non-empty token")
	}
	if session.User.ID == "" {
		t.Error("expected non-empty user ID")
	}
	if session.User.PasswordHash == "correct horse battery" {
		t.Error("password stored in plaintext")
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _, cleanup := setupAuthService(t)
	defer cleanup()

	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "correct horse battery"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(context.Background(), "alice@example.com", "Imposter", "another password")
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegister_WeakPassword(t *testing.T) {
	svc, _, cleanup := setupAuthService(t)
	defer cleanup()

	_, err := svc.Register(context.Background(), "alice@example.com", "Alice", "short")
	if !errs.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestLogin(t *testing.T) {
	svc, _, cleanup := setupAuthService(t)
	defer cleanup()

	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "correct horse battery"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	session, err := svc.Login(context.Background(), "alice@example.com", "correct horse battery")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if session.Token == "" {
		t.Error("expected non-empty token")
	}
}

func TestLogin_BadCredentials(t *testing.T) {
	svc, _, cleanup := setupAuthService(t)
	defer cleanup()

	if _, err := svc.Register(context.Background(), "alice@example.com", "Alice", "correct horse battery"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	// Wrong password and unknown email fail identically.
	_, errWrong := svc.Login(context.Background(), "alice@example.com", "wrong password!")
	_, errUnknown := svc.Login(context.Background(), "nobody@example.com", "correct horse battery")

	if !errs.IsForbidden(errWrong) || !errs.IsForbidden(errUnknown) {
		t.Fatalf("expected forbidden errors, got %v and %v", errWrong, errUnknown)
	}
	if errWrong.Error() != errUnknown.Error() {
		t.Errorf("error messages differ: '%s' vs '%s'", errWrong.Error(), errUnknown.Error())
	}
}

func TestCurrentUser(t *testing.T) {
	svc, _, cleanup := setupAuthService(t)
	defer cleanup()

	session, err := svc.Register(context.Background(), "alice@example.com", "Alice", "correct horse battery")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	user, err := svc.CurrentUser(context.Background(), session.User.ID)
	if err != nil {
		t.Fatalf("CurrentUser failed: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email: expected alice@example.com, got %s", user.Email)
	}

	if _, err := svc.CurrentUser(context.Background(), "nonexistent-id"); !errs.IsNotFound(err) {
		t.Errorf("expected not-found error, got %v", err)
	}
}
