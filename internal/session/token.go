package session

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	jose "github.com/go-jose/go-jose/v4"
	josejwt "github.com/go-jose/go-jose/v4/jwt"
	"go.uber.org/zap"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/repository"
)

// SessionClaims carries the non-standard claims embedded in session tokens.
type SessionClaims struct {
	Email string `json:"email,omitempty"`
	Name  string `json:"name,omitempty"`
}

// TokenStore issues and resolves signed session tokens. Resolution always
// reloads the user from the repository so the has_onboarded flag reflects
// current server truth rather than the state at login time.
type TokenStore struct {
	users  repository.UserRepository
	secret []byte
	issuer string
	ttl    time.Duration
	logger *zap.Logger
	ready  atomic.Bool
}

// NewTokenStore creates a session token store.
func NewTokenStore(users repository.UserRepository, secret []byte, issuer string, ttl time.Duration, logger *zap.Logger) *TokenStore {
	if logger == nil {
		logger = zap.L()
	}
	return &TokenStore{users: users, secret: secret, issuer: issuer, ttl: ttl, logger: logger}
}

// WarmUp completes the store's initial credential check. Until it has run,
// Resolve reports a loading snapshot so guards hold in their pending state
// instead of deciding on partial information.
func (s *TokenStore) WarmUp(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(s.secret) == 0 {
		return fmt.Errorf("session secret is required")
	}
	s.ready.Store(true)
	return nil
}

// Issue signs a session token for user.
func (s *TokenStore) Issue(ctx context.Context, user domain.User) (string, time.Time, error) {
	if strings.TrimSpace(user.ID) == "" {
		return "", time.Time{}, fmt.Errorf("user id is required")
	}

	signer, err := jose.NewSigner(
		jose.SigningKey{Algorithm: jose.HS256, Key: s.secret},
		(&jose.SignerOptions{}).WithType("JWT"),
	)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("create signer: %w", err)
	}

	now := time.Now()
	expiry := now.Add(s.ttl)
	claims := josejwt.Claims{
		Subject:  user.ID,
		Issuer:   s.issuer,
		IssuedAt: josejwt.NewNumericDate(now),
		Expiry:   josejwt.NewNumericDate(expiry),
	}
	custom := SessionClaims{Email: user.Email, Name: user.Name}

	token, err := josejwt.Signed(signer).Claims(claims).Claims(custom).Serialize()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign session token: %w", err)
	}
	return token, expiry, nil
}

// Resolve turns a raw token into a session snapshot. It never errors: an
// absent, expired, or otherwise invalid token resolves to an anonymous
// snapshot, and a store that has not finished warming up resolves to a
// loading snapshot.
func (s *TokenStore) Resolve(ctx context.Context, token string) Snapshot {
	if !s.ready.Load() {
		return Pending()
	}
	if strings.TrimSpace(token) == "" {
		return Anonymous()
	}

	parsed, err := josejwt.ParseSigned(token, []jose.SignatureAlgorithm{jose.HS256})
	if err != nil {
		s.logger.Debug("session token parse failed", zap.Error(err))
		return Anonymous()
	}

	var std josejwt.Claims
	var custom SessionClaims
	if err := parsed.Claims(s.secret, &std, &custom); err != nil {
		s.logger.Debug("session token signature invalid", zap.Error(err))
		return Anonymous()
	}
	if err := std.Validate(josejwt.Expected{Issuer: s.issuer, Time: time.Now()}); err != nil {
		s.logger.Debug("session token claims rejected", zap.Error(err))
		return Anonymous()
	}
	if strings.TrimSpace(std.Subject) == "" {
		return Anonymous()
	}

	user, err := s.users.GetByID(ctx, std.Subject)
	if err != nil {
		s.logger.Warn("session user lookup failed",
			zap.String("user_id", std.Subject),
			zap.Error(err),
		)
		return Anonymous()
	}

	return ForUser(&user)
}
