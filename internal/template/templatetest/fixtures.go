// Package templatetest builds small world templates for tests.
package templatetest

import (
	"context"
	"sync/atomic"

	"github.com/VoidMesh/worldstream/internal/template"
)

// Tile ids used by the fixture tileset.
const (
	Grass uint32 = 1
	Water uint32 = 2
	Wall  uint32 = 3
)

// Tileset returns a three-tile set where water is marked blocked.
func Tileset() template.Tileset {
	return template.Tileset{
		Name:      "terrain",
		FirstGID:  1,
		TileCount: 3,
		Tiles: map[uint32]template.TileProperties{
			0: {Kind: "grass"},
			1: {Kind: "water", Blocked: true},
			2: {Kind: "wall"},
		},
	}
}

// Open returns a width x height template covered in grass with an empty
// collision layer.
func Open(name string, width, height int) *template.WorldTemplate {
	ground := make([]uint32, width*height)
	for i := range ground {
		ground[i] = Grass
	}
	return &template.WorldTemplate{
		Name:   name,
		Width:  width,
		Height: height,
		Layers: []template.Layer{
			{Name: "ground", Tiles: ground},
			{Name: "collision", Collision: true, Tiles: make([]uint32, width*height)},
		},
		Tilesets: []template.Tileset{Tileset()},
	}
}

// WithWall places a wall tile on the collision layer at (x, y).
func WithWall(t *template.WorldTemplate, x, y int) *template.WorldTemplate {
	t.Layers[1].Tiles[y*t.Width+x] = Wall
	return t
}

// WithWater replaces the ground tile at (x, y) with water.
func WithWater(t *template.WorldTemplate, x, y int) *template.WorldTemplate {
	t.Layers[0].Tiles[y*t.Width+x] = Water
	return t
}

// CountingLoader serves Open templates of a fixed size and counts calls.
type CountingLoader struct {
	Width  int
	Height int
	calls  atomic.Int64
}

func (l *CountingLoader) LoadTemplate(ctx context.Context, worldName string) (*template.WorldTemplate, error) {
	l.calls.Add(1)
	return Open(worldName, l.Width, l.Height), nil
}

// Calls returns how many times LoadTemplate ran.
func (l *CountingLoader) Calls() int64 {
	return l.calls.Load()
}
