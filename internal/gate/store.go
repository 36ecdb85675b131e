package gate

import (
	"context"
	"fmt"
	"sync"

	"github.com/VoidMesh/worldstream/internal/db"
	"github.com/VoidMesh/worldstream/internal/logging"
)

// Queries is the subset of the generated queries the store needs.
type Queries interface {
	UnlockRegion(ctx context.Context, regionID string) error
	LockRegion(ctx context.Context, regionID string) (int64, error)
	ListUnlockedRegions(ctx context.Context) ([]db.RegionUnlock, error)
}

// Store persists unlocks in sqlite and answers reads from an in-memory copy,
// so IsRegionUnlocked never touches the database.
type Store struct {
	queries Queries
	logger  logging.LoggerInterface

	mu       sync.RWMutex
	unlocked map[string]struct{}
}

// NewStore loads the persisted unlocks.
func NewStore(ctx context.Context, queries Queries, logger logging.LoggerInterface) (*Store, error) {
	s := &Store{
		queries:  queries,
		logger:   logger.With("component", "region-gate"),
		unlocked: make(map[string]struct{}),
	}

	rows, err := queries.ListUnlockedRegions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load unlocked regions: %w", err)
	}
	for _, row := range rows {
		s.unlocked[row.RegionID] = struct{}{}
	}

	s.logger.Info("Region gate loaded", "unlocked", len(s.unlocked))
	return s, nil
}

func (s *Store) IsRegionUnlocked(regionID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.unlocked[regionID]
	return ok
}

// UnlockRegion persists the unlock before it becomes visible to readers.
func (s *Store) UnlockRegion(ctx context.Context, regionID string) error {
	if regionID == "" {
		return ErrEmptyRegion
	}
	if err := s.queries.UnlockRegion(ctx, regionID); err != nil {
		return fmt.Errorf("failed to unlock region %q: %w", regionID, err)
	}

	s.mu.Lock()
	s.unlocked[regionID] = struct{}{}
	s.mu.Unlock()

	s.logger.Info("Region unlocked", "region", regionID)
	return nil
}

func (s *Store) LockRegion(ctx context.Context, regionID string) error {
	affected, err := s.queries.LockRegion(ctx, regionID)
	if err != nil {
		return fmt.Errorf("failed to lock region %q: %w", regionID, err)
	}

	s.mu.Lock()
	delete(s.unlocked, regionID)
	s.mu.Unlock()

	s.logger.Info("Region locked", "region", regionID, "was_unlocked", affected > 0)
	return nil
}

func (s *Store) Unlocked() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedIDs(s.unlocked)
}
