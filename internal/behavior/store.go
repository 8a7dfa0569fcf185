package behavior

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/utafrali/marketplace-discovery/internal/domain"
	apperrors "github.com/utafrali/marketplace-discovery/pkg/errors"
	"github.com/utafrali/marketplace-discovery/pkg/logger"
)

// DefaultKey is the well-known key the profile is stored under.
const DefaultKey = "userBehavior"

// KV is the key-value capability the store persists through.
// Get must return an error wrapping apperrors.ErrNotFound for a missing key.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

// Store loads and saves a BehaviorProfile under a single key.
type Store struct {
	kv     KV
	key    string
	logger *slog.Logger
}

// NewStore creates a store over kv. An empty key selects DefaultKey.
func NewStore(kv KV, key string, logger *slog.Logger) *Store {
	if key == "" {
		key = DefaultKey
	}
	return &Store{kv: kv, key: key, logger: logger}
}

// Key returns the key the profile is stored under.
func (s *Store) Key() string {
	return s.key
}

// ForSession returns a store sharing s's backend whose key is namespaced by
// sessionID. An empty sessionID returns s unchanged.
func (s *Store) ForSession(sessionID string) *Store {
	if sessionID == "" {
		return s
	}
	return &Store{kv: s.kv, key: s.key + ":" + sessionID, logger: s.logger}
}

// Load returns the stored profile. A missing, unreadable or corrupt value
// yields the default empty profile; failures are logged and never returned.
func (s *Store) Load(ctx context.Context) domain.BehaviorProfile {
	raw, err := s.kv.Get(ctx, s.key)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.WithContext(ctx, s.logger).Warn("behavior profile read failed",
				slog.String("key", s.key),
				slog.String("error", err.Error()),
			)
		}
		return domain.NewBehaviorProfile()
	}

	var profile domain.BehaviorProfile
	if err := json.Unmarshal([]byte(raw), &profile); err != nil {
		logger.WithContext(ctx, s.logger).Warn("behavior profile corrupt, using default",
			slog.String("key", s.key),
			slog.String("error", err.Error()),
		)
		return domain.NewBehaviorProfile()
	}

	return profile.Normalize()
}

// Save overwrites the stored profile.
func (s *Store) Save(ctx context.Context, profile domain.BehaviorProfile) error {
	data, err := json.Marshal(profile.Normalize())
	if err != nil {
		return fmt.Errorf("marshal behavior profile: %w", err)
	}

	if err := s.kv.Set(ctx, s.key, string(data)); err != nil {
		return fmt.Errorf("save behavior profile %s: %w", s.key, err)
	}
	return nil
}
