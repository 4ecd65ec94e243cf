package progress

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/firstrun/firstrun-gate/internal/domain"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps records in process memory. It backs deployments that opt
// out of on-disk persistence and the test suites.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]domain.OnboardingRecord
}

// NewMemoryStore creates an empty in-memory progress store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]domain.OnboardingRecord)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (*domain.OnboardingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[string(Key(userID))]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *MemoryStore) Set(ctx context.Context, userID string, record domain.OnboardingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[string(Key(userID))] = record
	return nil
}
