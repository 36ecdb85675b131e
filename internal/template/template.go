package template

import (
	"errors"
	"fmt"
	"sort"
)

// Tiled stores flip/rotation flags in the top bits of a global tile id.
const (
	flippedHorizontally = 0x80000000
	flippedVertically   = 0x40000000
	flippedDiagonally   = 0x20000000

	gidMask = ^uint32(flippedHorizontally | flippedVertically | flippedDiagonally)
)

// WorldTemplate is the parsed tile content shared by every chunk of one world
// name. It must not be mutated once the cache has published it.
type WorldTemplate struct {
	Name     string
	Width    int
	Height   int
	Layers   []Layer
	Tilesets []Tileset
}

// Layer is a row-major grid of global tile ids, Width*Height long. Id 0 is an
// empty cell. Any non-empty tile on a collision layer blocks movement.
type Layer struct {
	Name      string
	Collision bool
	Tiles     []uint32
}

// Tileset maps the id range [FirstGID, FirstGID+TileCount) to per-tile
// properties keyed by local id.
type Tileset struct {
	Name      string
	FirstGID  uint32
	TileCount uint32
	Tiles     map[uint32]TileProperties
}

type TileProperties struct {
	Blocked    bool
	Kind       string
	Properties map[string]string
}

// GID strips flip flags from a raw tile id.
func GID(raw uint32) uint32 {
	return raw & gidMask
}

// Contains reports whether the global id falls into this tileset's range.
func (ts Tileset) Contains(gid uint32) bool {
	return gid >= ts.FirstGID && gid < ts.FirstGID+ts.TileCount
}

// TileProperties resolves a global tile id to its tileset metadata.
func (t *WorldTemplate) TileProperties(raw uint32) (TileProperties, bool) {
	gid := GID(raw)
	if gid == 0 {
		return TileProperties{}, false
	}
	for _, ts := range t.Tilesets {
		if !ts.Contains(gid) {
			continue
		}
		props, ok := ts.Tiles[gid-ts.FirstGID]
		return props, ok
	}
	return TileProperties{}, false
}

// TileAt returns the raw tile id of a layer cell.
func (t *WorldTemplate) TileAt(layer, x, y int) (uint32, bool) {
	if layer < 0 || layer >= len(t.Layers) || x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return 0, false
	}
	return t.Layers[layer].Tiles[y*t.Width+x], true
}

// Blocked reports whether the cell at (x, y) blocks movement on any layer.
func (t *WorldTemplate) Blocked(x, y int) bool {
	idx := y*t.Width + x
	for _, layer := range t.Layers {
		gid := GID(layer.Tiles[idx])
		if gid == 0 {
			continue
		}
		if layer.Collision {
			return true
		}
		if props, ok := t.TileProperties(gid); ok && props.Blocked {
			return true
		}
	}
	return false
}

// Validate checks the structural invariants the chunk code relies on.
func (t *WorldTemplate) Validate() error {
	if t.Width <= 0 || t.Height <= 0 {
		return fmt.Errorf("invalid dimensions %dx%d", t.Width, t.Height)
	}
	if len(t.Layers) == 0 {
		return errors.New("template has no layers")
	}
	want := t.Width * t.Height
	for i, layer := range t.Layers {
		if len(layer.Tiles) != want {
			return fmt.Errorf("layer %d (%q) has %d tiles, want %d", i, layer.Name, len(layer.Tiles), want)
		}
	}

	sets := make([]Tileset, len(t.Tilesets))
	copy(sets, t.Tilesets)
	sort.Slice(sets, func(i, j int) bool { return sets[i].FirstGID < sets[j].FirstGID })
	for i, ts := range sets {
		if ts.FirstGID == 0 {
			return fmt.Errorf("tileset %q has firstgid 0", ts.Name)
		}
		if i > 0 {
			prev := sets[i-1]
			if prev.FirstGID+prev.TileCount > ts.FirstGID {
				return fmt.Errorf("tilesets %q and %q overlap", prev.Name, ts.Name)
			}
		}
	}
	return nil
}
