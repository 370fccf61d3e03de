package service

import (
	"context"
	"log/slog"

	"github.com/adigold/splitbook/internal/auth"
	"github.com/adigold/splitbook/internal/errs"
	"github.com/adigold/splitbook/internal/models"
	"github.com/adigold/splitbook/internal/storage"
)

// AuthService handles registration, login and current-user lookup.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	store         storage.Store
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, store storage.Store) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		store:         store,
	}
}

// Session is a user plus a freshly minted token.
type Session struct {
	User  *models.User
	Token string
}

// Register creates a new user account and returns a session for it.
func (s *AuthService) Register(ctx context.Context, email, displayName, password string) (*Session, error) {
	if email == "" || displayName == "" {
		return nil, errs.NewFieldValidation(map[string]string{
			"email":       "email and displayName are required",
			"displayName": "email and displayName are required",
		})
	}

	user, err := s.authenticator.Register(ctx, email, displayName, password)
	if err != nil {
		switch err {
		case auth.ErrEmailExists, auth.ErrWeakPassword, auth.ErrBadEmail:
			return nil, errs.NewValidation("%s", err.Error())
		}
		slog.Error("Registration failed", "email", email, "error", err)
		return nil, errs.NewServer(err)
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, errs.NewServer(err)
	}

	slog.Info("User registered", "user_id", user.ID, "email", user.Email)
	return &Session{User: user, Token: token}, nil
}

// Login authenticates a user and returns a session. Credential failures
// surface as Forbidden without distinguishing unknown email from wrong
// password.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	if email == "" || password == "" {
		return nil, errs.NewFieldValidation(map[string]string{
			"email": "email and password are required",
		})
	}

	user, err := s.authenticator.Authenticate(ctx, email, password)
	if err != nil {
		slog.Warn("Login failed", "email", email)
		return nil, &errs.Forbidden{Message: auth.ErrInvalidCredentials.Error()}
	}

	token, err := s.jwtManager.Generate(user)
	if err != nil {
		slog.Error("Failed to generate token", "user_id", user.ID, "error", err)
		return nil, errs.NewServer(err)
	}

	slog.Info("User logged in", "user_id", user.ID)
	return &Session{User: user, Token: token}, nil
}

// CurrentUser fetches the authenticated user's record.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, errs.NewServer(err)
	}
	if user == nil {
		return nil, errs.NewNotFound("user", userID)
	}
	return user, nil
}
