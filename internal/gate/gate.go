// Package gate tracks which locked regions the viewer may enter.
package gate

import (
	"context"
	"errors"
	"sort"
	"sync"
)

var ErrEmptyRegion = errors.New("region id is empty")

// Unlocker answers and changes region state. IsRegionUnlocked is called from
// the foreground loop on every move and must not block on I/O.
type Unlocker interface {
	IsRegionUnlocked(regionID string) bool
	UnlockRegion(ctx context.Context, regionID string) error
	LockRegion(ctx context.Context, regionID string) error
	Unlocked() []string
}

// Memory is an in-process gate with no persistence.
type Memory struct {
	mu       sync.RWMutex
	unlocked map[string]struct{}
}

func NewMemory(regionIDs ...string) *Memory {
	m := &Memory{unlocked: make(map[string]struct{}, len(regionIDs))}
	for _, id := range regionIDs {
		m.unlocked[id] = struct{}{}
	}
	return m
}

func (m *Memory) IsRegionUnlocked(regionID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.unlocked[regionID]
	return ok
}

func (m *Memory) UnlockRegion(_ context.Context, regionID string) error {
	if regionID == "" {
		return ErrEmptyRegion
	}
	m.mu.Lock()
	m.unlocked[regionID] = struct{}{}
	m.mu.Unlock()
	return nil
}

func (m *Memory) LockRegion(_ context.Context, regionID string) error {
	m.mu.Lock()
	delete(m.unlocked, regionID)
	m.mu.Unlock()
	return nil
}

// Unlocked returns the unlocked region ids in sorted order.
func (m *Memory) Unlocked() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return sortedIDs(m.unlocked)
}

func sortedIDs(set map[string]struct{}) []string {
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
