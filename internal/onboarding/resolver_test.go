package onboarding_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/firstrun/firstrun-gate/internal/domain"
	"github.com/firstrun/firstrun-gate/internal/onboarding"
	"github.com/firstrun/firstrun-gate/internal/progress"
)

func TestResolveWithoutSession(t *testing.T) {
	resolver := onboarding.NewResolver(progress.NewMemoryStore(), zap.NewNop())

	require.Equal(t, domain.OnboardingSkipped, resolver.Resolve(context.Background(), nil))
	require.Equal(t, domain.OnboardingSkipped, resolver.Resolve(context.Background(), &domain.User{ID: ""}))
	require.Equal(t, domain.OnboardingSkipped, resolver.Resolve(context.Background(), &domain.User{ID: "   "}))
}

func TestResolveServerFlagOverridesLocalRecord(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	resolver := onboarding.NewResolver(store, zap.NewNop())

	// Conflicting local record must not matter.
	require.NoError(t, store.Set(ctx, "u1", domain.OnboardingRecord{Status: domain.OnboardingNotStarted}))

	user := &domain.User{ID: "u1", HasOnboarded: true}
	require.Equal(t, domain.OnboardingCompleted, resolver.Resolve(ctx, user))
}

func TestResolveFirstAppearance(t *testing.T) {
	resolver := onboarding.NewResolver(progress.NewMemoryStore(), zap.NewNop())

	user := &domain.User{ID: "u1"}
	require.Equal(t, domain.OnboardingNotStarted, resolver.Resolve(context.Background(), user))
}

func TestResolveCollapsesInterruptedFlow(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	resolver := onboarding.NewResolver(store, zap.NewNop())

	require.NoError(t, store.Set(ctx, "u1", domain.OnboardingRecord{Status: domain.OnboardingInProgress}))

	user := &domain.User{ID: "u1"}
	require.Equal(t, domain.OnboardingSkipped, resolver.Resolve(ctx, user))

	// Resolving again must stay skipped, never re-enter in_progress.
	require.Equal(t, domain.OnboardingSkipped, resolver.Resolve(ctx, user))
}

func TestResolveReturnsTerminalStatusesVerbatim(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	resolver := onboarding.NewResolver(store, zap.NewNop())
	user := &domain.User{ID: "u1"}

	now := time.Now().UTC()
	require.NoError(t, store.Set(ctx, "u1", domain.OnboardingRecord{Status: domain.OnboardingCompleted, CompletedAt: &now}))
	require.Equal(t, domain.OnboardingCompleted, resolver.Resolve(ctx, user))

	require.NoError(t, store.Set(ctx, "u1", domain.OnboardingRecord{Status: domain.OnboardingSkipped}))
	require.Equal(t, domain.OnboardingSkipped, resolver.Resolve(ctx, user))
}

func TestResolveDegradesOnStorageFault(t *testing.T) {
	resolver := onboarding.NewResolver(&faultyStore{}, zap.NewNop())

	user := &domain.User{ID: "u1"}
	require.Equal(t, domain.OnboardingSkipped, resolver.Resolve(context.Background(), user))
}

func TestSetStateSwallowsWriteFault(t *testing.T) {
	resolver := onboarding.NewResolver(&faultyStore{}, zap.NewNop())

	// Must not panic or surface the error.
	resolver.SetState(context.Background(), "u1", domain.OnboardingRecord{Status: domain.OnboardingInProgress})
}

func TestSetStateRequiresUserID(t *testing.T) {
	store := progress.NewMemoryStore()
	resolver := onboarding.NewResolver(store, zap.NewNop())
	ctx := context.Background()

	resolver.SetState(ctx, "", domain.OnboardingRecord{Status: domain.OnboardingCompleted})

	record, err := store.Get(ctx, "")
	require.NoError(t, err)
	require.Nil(t, record)
}

func TestSetStateOverwrites(t *testing.T) {
	ctx := context.Background()
	store := progress.NewMemoryStore()
	resolver := onboarding.NewResolver(store, zap.NewNop())

	resolver.SetState(ctx, "u1", domain.OnboardingRecord{Status: domain.OnboardingInProgress})
	resolver.SetState(ctx, "u1", domain.OnboardingRecord{Status: domain.OnboardingCompleted})

	record, err := store.Get(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, record)
	require.Equal(t, domain.OnboardingCompleted, record.Status)
}

type faultyStore struct{}

func (f *faultyStore) Get(ctx context.Context, userID string) (*domain.OnboardingRecord, error) {
	return nil, fmt.Errorf("storage unavailable")
}

func (f *faultyStore) Set(ctx context.Context, userID string, record domain.OnboardingRecord) error {
	return fmt.Errorf("storage unavailable")
}
