package chunk_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/template"
	"github.com/VoidMesh/worldstream/internal/template/templatetest"
	"github.com/VoidMesh/worldstream/internal/testutil"
)

// 4x4 tiles of 10px, so a chunk spans 40px.
func newTestSystem() *coords.System {
	return coords.NewSystem(10, coords.Dimensions{Width: 4, Height: 4}, nil)
}

type staticSource struct {
	tmpl *template.WorldTemplate
	err  error
}

func (s staticSource) GetOrBuild(ctx context.Context, worldName string) (*template.WorldTemplate, error) {
	return s.tmpl, s.err
}

func newWalledChunk(t *testing.T, key chunk.Key) (*chunk.Chunk, *template.WorldTemplate) {
	t.Helper()
	tmpl := templatetest.Open("square", 4, 4)
	templatetest.WithWall(tmpl, 1, 1)
	templatetest.WithWater(tmpl, 2, 3)

	c, err := chunk.New(context.Background(), key, "square", staticSource{tmpl: tmpl}, newTestSystem())
	require.NoError(t, err)
	return c, tmpl
}

func TestNew_DerivesGeometry(t *testing.T) {
	c, _ := newWalledChunk(t, chunk.Key{X: -1, Y: 2})

	assert.True(t, c.IsLoaded())
	assert.Equal(t, chunk.Key{X: -1, Y: 2}, c.Key())
	assert.Equal(t, "square", c.WorldName())
	assert.Equal(t, 4, c.Width())
	assert.Equal(t, 4, c.Height())
	assert.Equal(t, 2, c.LayerCount())

	ox, oy := c.Offset()
	assert.Equal(t, -40.0, ox)
	assert.Equal(t, 80.0, oy)
	assert.Equal(t, chunk.Rect{MinX: -40, MinY: 80, MaxX: 0, MaxY: 120}, c.Bounds())
}

func TestNew_SmallerWorldSitsOnSharedGrid(t *testing.T) {
	sys := coords.NewSystem(10, coords.Dimensions{Width: 4, Height: 4},
		map[string]coords.Dimensions{"hall": {Width: 2, Height: 3}})
	tmpl := templatetest.Open("hall", 2, 3)

	tests := []struct {
		name         string
		key          chunk.Key
		expectBounds chunk.Rect
	}{
		{name: "origin cell", key: chunk.Key{X: 0, Y: 0}, expectBounds: chunk.Rect{MinX: 0, MinY: 0, MaxX: 20, MaxY: 30}},
		{name: "far cell", key: chunk.Key{X: 10, Y: 0}, expectBounds: chunk.Rect{MinX: 400, MinY: 0, MaxX: 420, MaxY: 30}},
		{name: "negative cell", key: chunk.Key{X: -1, Y: -2}, expectBounds: chunk.Rect{MinX: -40, MinY: -80, MaxX: -20, MaxY: -50}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := chunk.New(context.Background(), tt.key, "hall", staticSource{tmpl: tmpl}, sys)
			require.NoError(t, err)
			assert.Equal(t, tt.expectBounds, c.Bounds())

			// The owning cell's first tile is always on the override chunk.
			assert.True(t, c.IsPassable(tt.expectBounds.MinX+1, tt.expectBounds.MinY+1))
		})
	}
}

func TestNew_Errors(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	loadErr := &template.TemplateLoadError{World: "square", Err: errors.New("unreadable")}

	t.Run("template failure passes through", func(t *testing.T) {
		c, err := chunk.New(context.Background(), chunk.Key{}, "square", staticSource{err: loadErr}, newTestSystem())
		assert.Nil(t, c)
		var target *template.TemplateLoadError
		assert.True(t, errors.As(err, &target))
	})

	t.Run("geometry mismatch", func(t *testing.T) {
		src := staticSource{tmpl: templatetest.Open("square", 8, 8)}
		c, err := chunk.New(context.Background(), chunk.Key{}, "square", src, newTestSystem())
		assert.Nil(t, c)
		assert.Error(t, err)
	})

	t.Run("cancelled while deriving grid", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := staticSource{tmpl: templatetest.Open("square", 4, 4)}
		c, err := chunk.New(ctx, chunk.Key{}, "square", src, newTestSystem())
		assert.Nil(t, c)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestChunk_IsPassable(t *testing.T) {
	c, _ := newWalledChunk(t, chunk.Key{X: 1, Y: 0})
	// chunk (1,0) covers x in [40,80), y in [0,40)

	tests := []struct {
		name     string
		x, y     float64
		expected bool
	}{
		{name: "open tile", x: 45, y: 5, expected: true},
		{name: "wall tile", x: 55, y: 15, expected: false},
		{name: "water tile", x: 65, y: 35, expected: false},
		{name: "min corner", x: 40, y: 0, expected: true},
		{name: "left of chunk", x: 39.9, y: 5, expected: false},
		{name: "right edge is exclusive", x: 80, y: 5, expected: false},
		{name: "above chunk", x: 45, y: -0.1, expected: false},
		{name: "below chunk", x: 45, y: 40, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsPassable(tt.x, tt.y))
		})
	}
}

func TestChunk_SetTilePassable_LeavesTemplateAlone(t *testing.T) {
	first, tmpl := newWalledChunk(t, chunk.Key{X: 0, Y: 0})
	src := staticSource{tmpl: tmpl}
	second, err := chunk.New(context.Background(), chunk.Key{X: 1, Y: 0}, "square", src, newTestSystem())
	require.NoError(t, err)

	wx, wy := first.TileToWorld(1, 1)
	require.False(t, first.IsPassable(wx+1, wy+1))

	first.SetTilePassable(1, 1, true)
	assert.True(t, first.IsPassable(wx+1, wy+1))

	assert.True(t, tmpl.Blocked(1, 1), "shared template is unchanged")
	sx, sy := second.TileToWorld(1, 1)
	assert.False(t, second.IsPassable(sx+1, sy+1), "sibling chunk keeps the template value")

	first.SetTilePassable(0, 0, false)
	assert.False(t, first.IsPassable(1, 1))

	assert.NotPanics(t, func() {
		first.SetTilePassable(-1, 0, true)
		first.SetTilePassable(4, 0, true)
		first.SetTilePassable(0, 99, true)
	})
}

func TestChunk_Unload(t *testing.T) {
	c, _ := newWalledChunk(t, chunk.Key{})
	require.True(t, c.IsPassable(5, 5))

	c.Unload()
	assert.False(t, c.IsLoaded())
	assert.False(t, c.IsPassable(5, 5), "unloaded chunks fail closed")
	assert.Equal(t, 0, c.LayerCount())
	_, ok := c.TileAt(0, 0, 0)
	assert.False(t, ok)

	assert.NotPanics(t, func() {
		c.Unload()
		c.SetTilePassable(0, 0, true)
	})
	assert.False(t, c.IsPassable(5, 5))
}

func TestChunk_TileLookups(t *testing.T) {
	c, _ := newWalledChunk(t, chunk.Key{X: -1, Y: -1})

	tx, ty := c.WorldToTile(-1, -1)
	assert.Equal(t, 3, tx)
	assert.Equal(t, 3, ty)
	assert.True(t, c.Contains(-1, -1))
	assert.False(t, c.Contains(0, 0))

	gid, ok := c.TileAt(0, 2, 3)
	require.True(t, ok)
	assert.Equal(t, templatetest.Water, gid)

	props, ok := c.TileProperties(gid)
	require.True(t, ok)
	assert.Equal(t, "water", props.Kind)
}

func TestRect_Contains(t *testing.T) {
	r := chunk.Rect{MinX: 0, MinY: 0, MaxX: 10, MaxY: 10}
	assert.True(t, r.Contains(0, 0))
	assert.True(t, r.Contains(9.99, 9.99))
	assert.False(t, r.Contains(10, 5))
	assert.False(t, r.Contains(5, -0.01))
}

func TestChunk_PassabilityRows(t *testing.T) {
	c, _ := newWalledChunk(t, chunk.Key{})

	assert.Equal(t, []string{
		"....",
		".#..",
		"....",
		"..#.",
	}, c.PassabilityRows())

	c.SetTilePassable(1, 1, true)
	assert.Equal(t, "....", c.PassabilityRows()[1])

	c.Unload()
	assert.Nil(t, c.PassabilityRows())
}
