// Package procedural generates world templates from Perlin noise. It serves
// world names that have no map file.
package procedural

import (
	"context"
	"hash/fnv"

	"github.com/aquilax/go-perlin"

	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/logging"
	"github.com/VoidMesh/worldstream/internal/template"
)

// Terrain tile ids in the generated tileset.
const (
	Water uint32 = iota + 1
	Sand
	Grass
	Dirt
	Stone
)

const (
	elevationScale = 8.0
	detailScale    = 3.0
)

// Loader builds a single ground layer per world name. Dimensions come from
// the coordinate system so the template always matches the chunk geometry.
type Loader struct {
	Seed   int64
	Coords *coords.System
	Logger logging.LoggerInterface
}

// NewLoader creates a procedural loader.
func NewLoader(seed int64, sys *coords.System, logger logging.LoggerInterface) *Loader {
	return &Loader{
		Seed:   seed,
		Coords: sys,
		Logger: logger.With("component", "procedural-loader"),
	}
}

// LoadTemplate implements template.Loader. It never reports
// template.ErrTemplateNotFound, so it belongs at the end of a Chain.
func (l *Loader) LoadTemplate(ctx context.Context, worldName string) (*template.WorldTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	dims := l.Coords.Dimensions(worldName)
	// Perlin noise with alpha=2, beta=2, n=3 gives terrain-like output.
	noise := perlin.NewPerlin(2, 2, 3, worldSeed(l.Seed, worldName))

	tiles := make([]uint32, dims.Width*dims.Height)
	counts := make(map[uint32]int)
	for y := 0; y < dims.Height; y++ {
		for x := 0; x < dims.Width; x++ {
			elevation := noise.Noise2D(float64(x)/elevationScale, float64(y)/elevationScale)
			detail := noise.Noise2D(float64(x)/detailScale, float64(y)/detailScale)
			gid := terrainFor(elevation*0.7 + detail*0.3)
			tiles[y*dims.Width+x] = gid
			counts[gid]++
		}
	}

	if l.Logger != nil {
		l.Logger.Debug("Generated procedural template",
			"world", worldName,
			"width", dims.Width,
			"height", dims.Height,
			"water_tiles", counts[Water],
		)
	}

	return &template.WorldTemplate{
		Name:     worldName,
		Width:    dims.Width,
		Height:   dims.Height,
		Layers:   []template.Layer{{Name: "ground", Tiles: tiles}},
		Tilesets: []template.Tileset{Tileset()},
	}, nil
}

// Tileset describes the generated terrain ids. Only water blocks movement.
func Tileset() template.Tileset {
	return template.Tileset{
		Name:      "terrain",
		FirstGID:  Water,
		TileCount: 5,
		Tiles: map[uint32]template.TileProperties{
			Water - 1: {Kind: "water", Blocked: true},
			Sand - 1:  {Kind: "sand"},
			Grass - 1: {Kind: "grass"},
			Dirt - 1:  {Kind: "dirt"},
			Stone - 1: {Kind: "stone"},
		},
	}
}

func terrainFor(combined float64) uint32 {
	switch {
	case combined < -0.3:
		return Water
	case combined < -0.1:
		return Sand
	case combined < 0.2:
		return Grass
	case combined < 0.5:
		return Dirt
	default:
		return Stone
	}
}

// worldSeed mixes the world name into the base seed so two worlds sharing a
// seed still differ.
func worldSeed(seed int64, worldName string) int64 {
	h := fnv.New64a()
	h.Write([]byte(worldName))
	return seed ^ int64(h.Sum64())
}
