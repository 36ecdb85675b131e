package chunk

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/VoidMesh/worldstream/internal/coords"
)

// Key identifies a chunk in chunk space. It is comparable and used directly
// as a map key.
type Key struct {
	X int `json:"chunk_x"`
	Y int `json:"chunk_y"`
}

// String returns the "x,y" form used in logs and URLs.
func (k Key) String() string {
	return strconv.Itoa(k.X) + "," + strconv.Itoa(k.Y)
}

// Chebyshev returns the ring distance between two keys.
func (k Key) Chebyshev(other Key) int {
	return coords.Chebyshev(k.X, k.Y, other.X, other.Y)
}

// ParseKey parses the "x,y" form produced by String.
func ParseKey(s string) (Key, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return Key{}, fmt.Errorf("invalid chunk key %q: missing comma", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return Key{}, fmt.Errorf("invalid chunk key %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return Key{}, fmt.Errorf("invalid chunk key %q: %w", s, err)
	}
	return Key{X: x, Y: y}, nil
}

// Less orders keys by row then column. Used to make listings deterministic.
func (k Key) Less(other Key) bool {
	if k.Y != other.Y {
		return k.Y < other.Y
	}
	return k.X < other.X
}
