package tiled

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/VoidMesh/worldstream/internal/template"
	"github.com/VoidMesh/worldstream/internal/testutil"
)

const caveMap = `{
  "width": 3,
  "height": 2,
  "tilewidth": 32,
  "tileheight": 32,
  "layers": [
    {"name": "ground", "type": "tilelayer", "width": 3, "height": 2, "data": [1, 1, 2, 1, 2147483649, 1]},
    {"name": "spawns", "type": "objectgroup", "objects": []},
    {"name": "collision", "type": "tilelayer", "width": 3, "height": 2, "data": [0, 0, 0, 0, 0, 3]},
    {"name": "rocks", "type": "tilelayer", "width": 3, "height": 2, "data": [10, 0, 0, 0, 0, 0],
     "properties": [{"name": "collision", "type": "bool", "value": true}]}
  ],
  "tilesets": [
    {"firstgid": 1, "name": "terrain", "tilecount": 3, "tiles": [
      {"id": 1, "type": "water", "properties": [{"name": "blocked", "type": "bool", "value": true}]},
      {"id": 2, "type": "wall"}
    ]},
    {"firstgid": 10, "source": "props.json"}
  ]
}`

const propsTileset = `{
  "name": "props",
  "tilecount": 4,
  "tiles": [
    {"id": 0, "class": "boulder", "properties": [{"name": "collides", "type": "string", "value": "true"}, {"name": "weight", "type": "int", "value": 40}]}
  ]
}`

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func TestLoader_LoadTemplate(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, dir, "cave.json", caveMap)
	writeFile(t, dir, "props.json", propsTileset)

	loader := NewLoader(dir, testutil.NewMockLogger())
	tmpl, err := loader.LoadTemplate(context.Background(), "cave")
	require.NoError(t, err)
	require.NoError(t, tmpl.Validate())

	assert.Equal(t, "cave", tmpl.Name)
	assert.Equal(t, 3, tmpl.Width)
	assert.Equal(t, 2, tmpl.Height)

	require.Len(t, tmpl.Layers, 3, "object groups are skipped")
	assert.Equal(t, "ground", tmpl.Layers[0].Name)
	assert.False(t, tmpl.Layers[0].Collision)
	assert.True(t, tmpl.Layers[1].Collision, "named collision layer")
	assert.True(t, tmpl.Layers[2].Collision, "collision property")

	require.Len(t, tmpl.Tilesets, 2)
	assert.Equal(t, "props", tmpl.Tilesets[1].Name)
	assert.Equal(t, uint32(10), tmpl.Tilesets[1].FirstGID)

	water, ok := tmpl.TileProperties(2)
	require.True(t, ok)
	assert.True(t, water.Blocked)
	assert.Equal(t, "water", water.Kind)

	boulder, ok := tmpl.TileProperties(10)
	require.True(t, ok)
	assert.True(t, boulder.Blocked)
	assert.Equal(t, "boulder", boulder.Kind)
	assert.Equal(t, "40", boulder.Properties["weight"])

	assert.True(t, tmpl.Blocked(0, 0), "rock on a collision-property layer")
	assert.False(t, tmpl.Blocked(1, 0))
	assert.True(t, tmpl.Blocked(2, 0), "water")
	assert.False(t, tmpl.Blocked(1, 1), "flipped grass")
	assert.True(t, tmpl.Blocked(2, 1), "collision layer tile")
}

func TestLoader_LoadTemplate_Errors(t *testing.T) {
	cleanup := testutil.SetupTest(t, testutil.DefaultTestConfig())
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, dir, "broken.json", `{"width": 2, "layers": [`)
	writeFile(t, dir, "orphan.json", `{"width": 1, "height": 1, "layers": [], "tilesets": [{"firstgid": 1, "source": "gone.json"}]}`)

	tests := []struct {
		name     string
		world    string
		notFound bool
	}{
		{name: "missing map", world: "nowhere", notFound: true},
		{name: "malformed json", world: "broken"},
		{name: "missing external tileset", world: "orphan"},
	}

	loader := NewLoader(dir, testutil.NewMockLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpl, err := loader.LoadTemplate(context.Background(), tt.world)
			require.Error(t, err)
			assert.Nil(t, tmpl)
			assert.Equal(t, tt.notFound, errors.Is(err, template.ErrTemplateNotFound))
		})
	}
}
