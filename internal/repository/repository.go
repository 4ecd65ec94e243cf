package repository

import (
	"context"

	"github.com/firstrun/firstrun-gate/internal/domain"
)

// UserRepository provides access to backend user records, including the
// server-authoritative has_onboarded flag.
type UserRepository interface {
	GetByID(ctx context.Context, userID string) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	MarkOnboarded(ctx context.Context, userID string) error
}
