package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/repository"
	"github.com/firstrun/firstrun-gate/internal/session"
)

const minPasswordLength = 8

// UserViewModel is the user shape returned to clients.
type UserViewModel struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Name         string `json:"name"`
	AvatarURL    string `json:"avatar_url,omitempty"`
	HasOnboarded bool   `json:"has_onboarded"`
}

// AuthSession is the payload returned from login and register.
type AuthSession struct {
	AccessToken string        `json:"access_token"`
	TokenType   string        `json:"token_type"`
	ExpiresIn   int64         `json:"expires_in"`
	User        UserViewModel `json:"user"`
}

// AuthService handles registration, login, and session introspection.
type AuthService struct {
	users  repository.UserRepository
	tokens *session.TokenStore
	logger *zap.Logger
}

// NewAuthService creates the auth service.
func NewAuthService(users repository.UserRepository, tokens *session.TokenStore, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.L()
	}
	return &AuthService{users: users, tokens: tokens, logger: logger}
}

// Register creates a user and issues a session.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (AuthSession, error) {
	normalized := normalizeIdentifier(email)
	if normalized == "" {
		return AuthSession{}, newAPIError("invalid_request", "Email is required.", http.StatusBadRequest)
	}
	if len(strings.TrimSpace(password)) < minPasswordLength {
		return AuthSession{}, newAPIError("invalid_request", "Password must be at least 8 characters.", http.StatusBadRequest)
	}

	if _, err := s.users.GetByEmail(ctx, normalized); err == nil {
		return AuthSession{}, newAPIError("invalid_request", "Email already registered.", http.StatusBadRequest)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return AuthSession{}, fmt.Errorf("check existing user: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return AuthSession{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.Create(ctx, domain.User{
		ID:           uuid.NewString(),
		Email:        normalized,
		Name:         strings.TrimSpace(name),
		PasswordHash: string(hashed),
	})
	if err != nil {
		return AuthSession{}, fmt.Errorf("create user: %w", err)
	}

	s.audit("auth.register.success", "user_id", created.ID)
	return s.issueSession(ctx, created)
}

// Login verifies credentials and issues a session.
func (s *AuthService) Login(ctx context.Context, email, password string) (AuthSession, error) {
	normalized := normalizeIdentifier(email)
	if normalized == "" || strings.TrimSpace(password) == "" {
		return AuthSession{}, newAPIError("invalid_request", "Email and password are required.", http.StatusBadRequest)
	}

	user, err := s.users.GetByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return AuthSession{}, newAPIError("invalid_credentials", "Invalid email or password.", http.StatusUnauthorized)
		}
		return AuthSession{}, fmt.Errorf("load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.audit("auth.login.rejected", "user_id", user.ID)
		return AuthSession{}, newAPIError("invalid_credentials", "Invalid email or password.", http.StatusUnauthorized)
	}

	s.audit("auth.login.success", "user_id", user.ID)
	return s.issueSession(ctx, user)
}

// Me returns the profile for an authenticated user.
func (s *AuthService) Me(ctx context.Context, userID string) (UserViewModel, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return UserViewModel{}, newAPIError("not_found", "User no longer exists.", http.StatusNotFound)
		}
		return UserViewModel{}, fmt.Errorf("load user: %w", err)
	}
	return newUserViewModel(user), nil
}

func (s *AuthService) issueSession(ctx context.Context, user domain.User) (AuthSession, error) {
	token, expiry, err := s.tokens.Issue(ctx, user)
	if err != nil {
		return AuthSession{}, fmt.Errorf("issue session token: %w", err)
	}
	return AuthSession{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(time.Until(expiry).Seconds()),
		User:        newUserViewModel(user),
	}, nil
}

func (s *AuthService) audit(event string, kv ...any) {
	s.logger.Sugar().Infow(event, kv...)
}

func newUserViewModel(user domain.User) UserViewModel {
	return UserViewModel{
		ID:           user.ID,
		Email:        user.Email,
		Name:         user.Name,
		AvatarURL:    user.AvatarURL,
		HasOnboarded: user.HasOnboarded,
	}
}

func normalizeIdentifier(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
