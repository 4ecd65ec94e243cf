package progress

import (
	"context"

	"github.com/firstrun/firstrun-gate/internal/domain"
)

// KeyNamespace prefixes every persisted record key so progress entries never
// collide with unrelated keys sharing the same store.
const KeyNamespace = "firstrun_onboarding"

// Store persists per-user onboarding progress independently of the backend.
// Get returns (nil, nil) when no record exists or the stored payload is
// malformed; it only errors on an actual storage fault. Set overwrites any
// prior record for the user.
type Store interface {
	Get(ctx context.Context, userID string) (*domain.OnboardingRecord, error)
	Set(ctx context.Context, userID string, record domain.OnboardingRecord) error
}

// Key builds the namespaced storage key for a user id.
func Key(userID string) []byte {
	return []byte(KeyNamespace + "_" + userID)
}
