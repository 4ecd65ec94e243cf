package service

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/onboarding"
	"github.com/firstrun/firstrun-gate/internal/repository"
)

// FlowState is the onboarding state returned to clients.
type FlowState struct {
	Status      domain.OnboardingStatus `json:"status"`
	CompletedAt *time.Time              `json:"completed_at,omitempty"`
}

// OnboardingService drives the onboarding flow's writes against the local
// progress store and, on completion, the server-authoritative flag.
type OnboardingService struct {
	resolver *onboarding.Resolver
	users    repository.UserRepository
	logger   *zap.Logger
}

// NewOnboardingService creates the onboarding flow service.
func NewOnboardingService(resolver *onboarding.Resolver, users repository.UserRepository, logger *zap.Logger) *OnboardingService {
	if logger == nil {
		logger = zap.L()
	}
	return &OnboardingService{resolver: resolver, users: users, logger: logger}
}

// State reports the resolved onboarding status for user.
func (s *OnboardingService) State(ctx context.Context, user *domain.User) FlowState {
	return FlowState{Status: s.resolver.Resolve(ctx, user)}
}

// Start marks the flow as in progress. Only a user whose status resolves to
// not_started may start: anything else has either finished or abandoned the
// flow, and an abandoned flow is not resumable.
func (s *OnboardingService) Start(ctx context.Context, user *domain.User) (FlowState, error) {
	status := s.resolver.Resolve(ctx, user)
	if status != domain.OnboardingNotStarted {
		return FlowState{}, newAPIError("flow_not_enterable", "Onboarding cannot be started in the current state.", http.StatusConflict)
	}

	s.resolver.SetState(ctx, user.ID, domain.OnboardingRecord{Status: domain.OnboardingInProgress})
	s.logger.Info("onboarding flow started", zap.String("user_id", user.ID))
	return FlowState{Status: domain.OnboardingInProgress}, nil
}

// Complete finishes the flow: it persists the completed record locally and
// flips the server-side has_onboarded flag. The server flag is the part that
// must not fail silently; a local write failure only degrades later
// resolution, which the resolver already tolerates.
func (s *OnboardingService) Complete(ctx context.Context, user *domain.User) (FlowState, error) {
	now := time.Now().UTC()
	s.resolver.SetState(ctx, user.ID, domain.OnboardingRecord{
		Status:      domain.OnboardingCompleted,
		CompletedAt: &now,
	})

	if err := s.users.MarkOnboarded(ctx, user.ID); err != nil {
		return FlowState{}, fmt.Errorf("mark user onboarded: %w", err)
	}

	s.logger.Info("onboarding flow completed", zap.String("user_id", user.ID))
	return FlowState{Status: domain.OnboardingCompleted, CompletedAt: &now}, nil
}

// Skip records that the user abandoned the flow.
func (s *OnboardingService) Skip(ctx context.Context, user *domain.User) FlowState {
	s.resolver.SetState(ctx, user.ID, domain.OnboardingRecord{Status: domain.OnboardingSkipped})
	s.logger.Info("onboarding flow skipped", zap.String("user_id", user.ID))
	return FlowState{Status: domain.OnboardingSkipped}
}
