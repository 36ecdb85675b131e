package chunk

import (
	"sort"
	"sync"
	"time"
)

type stateRecord struct {
	state State
	since time.Time
}

// StateManager is the authoritative key -> state ledger. It performs no I/O
// and starts no goroutines. The loader's workers record terminal transitions,
// so access is guarded by an RWMutex.
type StateManager struct {
	mu      sync.RWMutex
	records map[Key]stateRecord
	now     func() time.Time
}

// NewStateManager creates an empty ledger. A nil clock means time.Now.
func NewStateManager(now func() time.Time) *StateManager {
	if now == nil {
		now = time.Now
	}
	return &StateManager{
		records: make(map[Key]stateRecord),
		now:     now,
	}
}

// Transition moves key to newState and returns the previous state. Every
// transition is accepted. Re-entering the current state keeps the original
// timestamp.
func (m *StateManager) Transition(key Key, newState State) State {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev, ok := m.records[key]
	if ok && prev.state == newState {
		return prev.state
	}
	m.records[key] = stateRecord{state: newState, since: m.now()}
	return prev.state
}

// State returns the current state; unknown keys are Unloaded.
func (m *StateManager) State(key Key) State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.records[key].state
}

// Since returns when key entered its current state.
func (m *StateManager) Since(key Key) (time.Time, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[key]
	return rec.since, ok
}

// IsLoaded reports Loaded or Cached.
func (m *StateManager) IsLoaded(key Key) bool {
	s := m.State(key)
	return s == Loaded || s == Cached
}

func (m *StateManager) IsLoading(key Key) bool {
	return m.State(key) == Loading
}

func (m *StateManager) IsUnloading(key Key) bool {
	return m.State(key) == Unloading
}

// ChunksInState returns the keys currently in state, ordered by Key.Less.
// Asking for Unloaded only returns keys that have a record.
func (m *StateManager) ChunksInState(state State) []Key {
	m.mu.RLock()
	keys := make([]Key, 0)
	for k, rec := range m.records {
		if rec.state == state {
			keys = append(keys, k)
		}
	}
	m.mu.RUnlock()

	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}

// Counts returns the number of recorded keys per state.
func (m *StateManager) Counts() map[State]int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	counts := make(map[State]int, len(stateNames))
	for _, rec := range m.records {
		counts[rec.state]++
	}
	return counts
}

// Clear forgets key; it reads as Unloaded afterwards.
func (m *StateManager) Clear(key Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, key)
}

func (m *StateManager) ClearAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[Key]stateRecord)
}

// IsExpectedTransition reports whether from -> to is part of the nominal
// lifecycle. Transition does not enforce it; callers use it to flag
// surprising transitions in logs.
func IsExpectedTransition(from, to State) bool {
	switch from {
	case Unloaded:
		return to == Loading
	case Loading:
		return to == Loaded || to == Unloaded
	case Loaded:
		return to == Unloading || to == Cached
	case Cached:
		return to == Loaded || to == Unloading
	case Unloading:
		return to == Unloaded
	}
	return false
}
