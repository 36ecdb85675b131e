package chunk

import (
	"fmt"
	"strings"
)

// State is the lifecycle stage of a chunk key.
type State int

const (
	Unloaded State = iota
	Loading
	Loaded
	Unloading
	// Cached chunks keep their data but are detached from the renderer.
	Cached
)

var stateNames = [...]string{
	Unloaded:  "UNLOADED",
	Loading:   "LOADING",
	Loaded:    "LOADED",
	Unloading: "UNLOADING",
	Cached:    "CACHED",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("State(%d)", int(s))
	}
	return stateNames[s]
}

// MarshalText renders the state name in JSON responses.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// ParseState accepts a state name in any case.
func ParseState(s string) (State, error) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for i, name := range stateNames {
		if name == upper {
			return State(i), nil
		}
	}
	return Unloaded, fmt.Errorf("unknown chunk state %q", s)
}

// AllStates lists every state in declaration order.
func AllStates() []State {
	return []State{Unloaded, Loading, Loaded, Unloading, Cached}
}
