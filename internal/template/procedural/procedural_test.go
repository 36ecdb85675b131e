package procedural

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/testutil"
)

func newTestLoader(seed int64) *Loader {
	sys := coords.NewSystem(32, coords.Dimensions{Width: 16, Height: 16}, map[string]coords.Dimensions{
		"corridor": {Width: 8, Height: 4},
	})
	return NewLoader(seed, sys, testutil.NewMockLogger())
}

func TestLoader_LoadTemplate_MatchesCoordinateSystem(t *testing.T) {
	loader := newTestLoader(42)

	tests := []struct {
		world        string
		expectWidth  int
		expectHeight int
	}{
		{world: "overworld", expectWidth: 16, expectHeight: 16},
		{world: "corridor", expectWidth: 8, expectHeight: 4},
	}

	for _, tt := range tests {
		t.Run(tt.world, func(t *testing.T) {
			tmpl, err := loader.LoadTemplate(context.Background(), tt.world)
			require.NoError(t, err)
			require.NoError(t, tmpl.Validate())
			assert.Equal(t, tt.world, tmpl.Name)
			assert.Equal(t, tt.expectWidth, tmpl.Width)
			assert.Equal(t, tt.expectHeight, tmpl.Height)
			for _, gid := range tmpl.Layers[0].Tiles {
				assert.GreaterOrEqual(t, gid, Water)
				assert.LessOrEqual(t, gid, Stone)
			}
		})
	}
}

func TestLoader_LoadTemplate_Deterministic(t *testing.T) {
	a, err := newTestLoader(7).LoadTemplate(context.Background(), "overworld")
	require.NoError(t, err)
	b, err := newTestLoader(7).LoadTemplate(context.Background(), "overworld")
	require.NoError(t, err)

	assert.Equal(t, a.Layers[0].Tiles, b.Layers[0].Tiles)
}

func TestLoader_WaterIsBlocked(t *testing.T) {
	tmpl, err := newTestLoader(7).LoadTemplate(context.Background(), "overworld")
	require.NoError(t, err)

	for y := 0; y < tmpl.Height; y++ {
		for x := 0; x < tmpl.Width; x++ {
			gid, _ := tmpl.TileAt(0, x, y)
			assert.Equal(t, gid == Water, tmpl.Blocked(x, y), "tile (%d,%d)", x, y)
		}
	}
}

func TestTerrainFor(t *testing.T) {
	tests := []struct {
		combined float64
		expected uint32
	}{
		{-0.9, Water},
		{-0.2, Sand},
		{0.0, Grass},
		{0.3, Dirt},
		{0.8, Stone},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.expected, terrainFor(tt.combined))
	}
}

func TestWorldSeed(t *testing.T) {
	assert.Equal(t, worldSeed(1, "a"), worldSeed(1, "a"))
	assert.NotEqual(t, worldSeed(1, "a"), worldSeed(1, "b"))
}

func TestLoader_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newTestLoader(1).LoadTemplate(ctx, "overworld")
	assert.ErrorIs(t, err, context.Canceled)
}
