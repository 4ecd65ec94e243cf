package onboarding

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/progress"
)

// Resolver combines the backend user record with locally persisted progress
// to produce one authoritative onboarding status. It holds no state of its
// own, never mutates records, and never fails: every fault degrades to
// OnboardingSkipped so callers are routed past onboarding rather than left
// on a blank screen or in a redirect loop.
type Resolver struct {
	store  progress.Store
	logger *zap.Logger
}

// NewResolver creates a resolver backed by store.
func NewResolver(store progress.Store, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.L()
	}
	return &Resolver{store: store, logger: logger}
}

// Resolve produces the authoritative onboarding status for user, in strict
// priority order:
//
//  1. No user or no identifier resolves to OnboardingSkipped so guards have
//     a deterministic status to route by even without a session.
//  2. The server-side HasOnboarded flag resolves to OnboardingCompleted
//     unconditionally; server truth overrides stale or tampered local state.
//  3. Otherwise the local record decides: absent means OnboardingNotStarted,
//     a persisted in_progress collapses to OnboardingSkipped (an interrupted
//     flow is treated as abandoned, never silently resumed), and any other
//     status is returned verbatim.
//
// A storage fault during step 3 is logged and resolves to OnboardingSkipped.
func (r *Resolver) Resolve(ctx context.Context, user *domain.User) domain.OnboardingStatus {
	if user == nil || strings.TrimSpace(user.ID) == "" {
		return domain.OnboardingSkipped
	}

	if user.HasOnboarded {
		return domain.OnboardingCompleted
	}

	record, err := r.store.Get(ctx, user.ID)
	if err != nil {
		r.logger.Warn("onboarding record read failed, resolving as skipped",
			zap.String("user_id", user.ID),
			zap.Error(err),
		)
		return domain.OnboardingSkipped
	}
	if record == nil {
		return domain.OnboardingNotStarted
	}
	if record.Status == domain.OnboardingInProgress {
		return domain.OnboardingSkipped
	}
	return record.Status
}

// SetState persists a progress record for userID, overwriting any prior
// record. Persistence is best-effort: a failed write is logged and swallowed,
// and a later Resolve simply falls back toward not_started or skipped.
func (r *Resolver) SetState(ctx context.Context, userID string, record domain.OnboardingRecord) {
	if strings.TrimSpace(userID) == "" {
		r.logger.Warn("onboarding state write skipped: empty user id")
		return
	}
	if err := r.store.Set(ctx, userID, record); err != nil {
		r.logger.Error("onboarding state write failed",
			zap.String("user_id", userID),
			zap.String("status", string(record.Status)),
			zap.Error(err),
		)
	}
}
