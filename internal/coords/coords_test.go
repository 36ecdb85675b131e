package coords

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func newTestSystem() *System {
	return NewSystem(32, Dimensions{Width: 16, Height: 16}, map[string]Dimensions{
		"square": {Width: 20, Height: 20},
		"strip":  {Width: 40, Height: 8},
	})
}

func TestSystem_Dimensions(t *testing.T) {
	tests := []struct {
		name      string
		sys       *System
		world     string
		expectDim Dimensions
	}{
		{name: "registered world", sys: newTestSystem(), world: "square", expectDim: Dimensions{20, 20}},
		{name: "non-square world", sys: newTestSystem(), world: "strip", expectDim: Dimensions{40, 8}},
		{name: "unknown world falls back", sys: newTestSystem(), world: "nowhere", expectDim: Dimensions{16, 16}},
		{name: "zero config uses package defaults", sys: NewSystem(0, Dimensions{}, nil), world: "any", expectDim: DefaultDimensions()},
		{
			name:      "invalid per-world entry ignored",
			sys:       NewSystem(32, Dimensions{8, 8}, map[string]Dimensions{"bad": {Width: 0, Height: 3}}),
			world:     "bad",
			expectDim: Dimensions{8, 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectDim, tt.sys.Dimensions(tt.world))
		})
	}
}

func TestSystem_ChunkPixelSize(t *testing.T) {
	sys := newTestSystem()

	w, h := sys.ChunkPixelSize("square")
	assert.Equal(t, 640.0, w)
	assert.Equal(t, 640.0, h)

	w, h = sys.ChunkPixelSize("strip")
	assert.Equal(t, 1280.0, w)
	assert.Equal(t, 256.0, h)

	assert.Equal(t, DefaultTileSize, NewSystem(-1, Dimensions{}, nil).TileSize())
}

func TestSystem_WorldToChunk(t *testing.T) {
	sys := newTestSystem()

	tests := []struct {
		name             string
		wx, wy           float64
		world            string
		expectX, expectY int
	}{
		{name: "origin", wx: 0, wy: 0, world: "square", expectX: 0, expectY: 0},
		{name: "inside first chunk", wx: 639.9, wy: 1, world: "square", expectX: 0, expectY: 0},
		{name: "exact boundary belongs to next chunk", wx: 640, wy: 640, world: "square", expectX: 1, expectY: 1},
		{name: "negative floors down", wx: -0.5, wy: -640, world: "square", expectX: -1, expectY: -1},
		{name: "negative just past boundary", wx: -640.01, wy: -1, world: "square", expectX: -2, expectY: -1},
		{name: "axis sizes differ", wx: 1300, wy: 300, world: "strip", expectX: 1, expectY: 1},
		{name: "unknown world uses default", wx: 513, wy: 511, world: "nowhere", expectX: 1, expectY: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy := sys.WorldToChunk(tt.wx, tt.wy, tt.world)
			assert.Equal(t, tt.expectX, cx)
			assert.Equal(t, tt.expectY, cy)
		})
	}
}

func TestSystem_RoundTrip(t *testing.T) {
	sys := newTestSystem()

	for _, world := range []string{"square", "strip", "nowhere"} {
		for cx := -7; cx <= 7; cx++ {
			for cy := -7; cy <= 7; cy++ {
				wx, wy := sys.ChunkToWorld(cx, cy, world)
				gotX, gotY := sys.WorldToChunk(wx, wy, world)
				assert.Equal(t, cx, gotX, "world=%s chunk=%d,%d", world, cx, cy)
				assert.Equal(t, cy, gotY, "world=%s chunk=%d,%d", world, cx, cy)
			}
		}
	}
}

func TestSystem_GridIgnoresPerWorldGeometry(t *testing.T) {
	sys := newTestSystem()

	tests := []struct {
		name             string
		wx, wy           float64
		expectX, expectY int
	}{
		{name: "origin", wx: 0, wy: 0, expectX: 0, expectY: 0},
		{name: "default cell edge", wx: 511.9, wy: 511.9, expectX: 0, expectY: 0},
		{name: "next cell", wx: 512, wy: 0, expectX: 1, expectY: 0},
		{name: "negative", wx: -1, wy: -513, expectX: -1, expectY: -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cx, cy := sys.GridCell(tt.wx, tt.wy)
			assert.Equal(t, tt.expectX, cx)
			assert.Equal(t, tt.expectY, cy)
		})
	}

	wx, wy := sys.GridOrigin(3, -2)
	assert.Equal(t, 1536.0, wx)
	assert.Equal(t, -1024.0, wy)
}

func TestChebyshev(t *testing.T) {
	assert.Equal(t, 0, Chebyshev(3, 3, 3, 3))
	assert.Equal(t, 2, Chebyshev(-1, 0, 1, 0))
	assert.Equal(t, 3, Chebyshev(0, 0, -2, 3))
	assert.Equal(t, 1, Chebyshev(1, 1, 0, 0))
}
