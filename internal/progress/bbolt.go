package progress

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/firstrun/firstrun-gate/internal/domain"
)

const recordBucket = "onboarding"

var _ Store = (*BoltStore)(nil)

// BoltStore is a BoltDB-backed progress store scoped to a single gateway
// instance, the service-side equivalent of device-local persistence.
type BoltStore struct {
	db *bbolt.DB
}

// Open opens (or creates) the progress database at path.
func Open(path string) (*BoltStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("progress db path is required")
	}

	db, err := bbolt.Open(filepath.Clean(path), 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open progress db: %w", err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(recordBucket))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create progress bucket: %w", err)
	}

	return &BoltStore{db: db}, nil
}

// Close closes the underlying database.
func (s *BoltStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Get loads the onboarding record for a user. A missing key and a payload
// that fails to decode both yield (nil, nil): malformed local state must
// never surface as an error to the resolver.
func (s *BoltStore) Get(ctx context.Context, userID string) (*domain.OnboardingRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}

	var record *domain.OnboardingRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("progress bucket is missing")
		}
		payload := bucket.Get(Key(userID))
		if payload == nil {
			return nil
		}
		var decoded domain.OnboardingRecord
		if err := json.Unmarshal(payload, &decoded); err != nil || !decoded.Status.Valid() {
			zap.L().Warn("discarding malformed onboarding record",
				zap.String("user_id", userID),
				zap.Error(err),
			)
			return nil
		}
		record = &decoded
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read onboarding record: %w", err)
	}
	return record, nil
}

// Set persists a record, overwriting any prior record for the user.
func (s *BoltStore) Set(ctx context.Context, userID string, record domain.OnboardingRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(userID) == "" {
		return fmt.Errorf("user id is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal onboarding record: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(recordBucket))
		if bucket == nil {
			return fmt.Errorf("progress bucket is missing")
		}
		return bucket.Put(Key(userID), payload)
	})
	if err != nil {
		return fmt.Errorf("write onboarding record: %w", err)
	}
	return nil
}
