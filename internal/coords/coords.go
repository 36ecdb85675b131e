// Package coords converts between continuous world space (pixels) and
// discrete chunk space. Chunk geometry is looked up per world name; names the
// system does not know fall back to the default dimensions.
//
// Every world shares one chunk grid laid out with the default dimensions.
// Chunk (cx, cy) of any world starts at GridOrigin(cx, cy); a world with
// smaller chunks only covers part of its grid cell.
package coords

import "math"

const (
	// DefaultTileSize is the pixel edge length of one tile.
	DefaultTileSize = 32
	// DefaultChunkTiles is the tile edge length of a chunk when nothing else is known.
	DefaultChunkTiles = 16
)

// Dimensions is a chunk's size in tiles.
type Dimensions struct {
	Width  int
	Height int
}

// DefaultDimensions returns the documented fallback chunk size.
func DefaultDimensions() Dimensions {
	return Dimensions{Width: DefaultChunkTiles, Height: DefaultChunkTiles}
}

// System is immutable after construction and safe for concurrent use.
type System struct {
	tileSize int
	defaults Dimensions
	perWorld map[string]Dimensions
}

// NewSystem creates a coordinate system. Non-positive arguments are replaced
// by the package defaults.
func NewSystem(tileSize int, defaults Dimensions, perWorld map[string]Dimensions) *System {
	if tileSize <= 0 {
		tileSize = DefaultTileSize
	}
	if defaults.Width <= 0 || defaults.Height <= 0 {
		defaults = DefaultDimensions()
	}

	worlds := make(map[string]Dimensions, len(perWorld))
	for name, dims := range perWorld {
		if dims.Width <= 0 || dims.Height <= 0 {
			continue
		}
		worlds[name] = dims
	}

	return &System{
		tileSize: tileSize,
		defaults: defaults,
		perWorld: worlds,
	}
}

// TileSize returns the pixel size of one tile.
func (s *System) TileSize() int {
	return s.tileSize
}

// Dimensions returns the chunk tile dimensions for a world name.
func (s *System) Dimensions(worldName string) Dimensions {
	if dims, ok := s.perWorld[worldName]; ok {
		return dims
	}
	return s.defaults
}

// ChunkPixelSize returns the chunk size in pixels for a world name.
func (s *System) ChunkPixelSize(worldName string) (width, height float64) {
	dims := s.Dimensions(worldName)
	return float64(dims.Width * s.tileSize), float64(dims.Height * s.tileSize)
}

// WorldToChunk returns the chunk containing the world-space point.
func (s *System) WorldToChunk(worldX, worldY float64, worldName string) (chunkX, chunkY int) {
	w, h := s.ChunkPixelSize(worldName)
	return int(math.Floor(worldX / w)), int(math.Floor(worldY / h))
}

// ChunkToWorld returns the world-space origin (minimum corner) of a chunk.
func (s *System) ChunkToWorld(chunkX, chunkY int, worldName string) (worldX, worldY float64) {
	w, h := s.ChunkPixelSize(worldName)
	return float64(chunkX) * w, float64(chunkY) * h
}

// GridCell returns the chunk key of the shared grid cell containing the point.
func (s *System) GridCell(worldX, worldY float64) (chunkX, chunkY int) {
	w, h := s.gridPixelSize()
	return int(math.Floor(worldX / w)), int(math.Floor(worldY / h))
}

// GridOrigin returns the world-space origin of a shared grid cell.
func (s *System) GridOrigin(chunkX, chunkY int) (worldX, worldY float64) {
	w, h := s.gridPixelSize()
	return float64(chunkX) * w, float64(chunkY) * h
}

func (s *System) gridPixelSize() (width, height float64) {
	return float64(s.defaults.Width * s.tileSize), float64(s.defaults.Height * s.tileSize)
}

// Chebyshev returns max(|dx|, |dy|), the ring distance used for radii.
func Chebyshev(ax, ay, bx, by int) int {
	dx := ax - bx
	if dx < 0 {
		dx = -dx
	}
	dy := ay - by
	if dy < 0 {
		dy = -dy
	}
	if dx > dy {
		return dx
	}
	return dy
}
