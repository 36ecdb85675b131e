package streaming

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/config"
)

func TestRegionMap(t *testing.T) {
	r := NewRegionMap("overworld").
		Override(chunk.Key{X: 5, Y: 5}, "dungeon").
		SetGate(chunk.Key{X: 5, Y: 5}, "crypt").
		SetGate(chunk.Key{X: -2, Y: 0}, "bridge")

	assert.Equal(t, "overworld", r.DefaultWorld())
	assert.Equal(t, "dungeon", r.WorldName(chunk.Key{X: 5, Y: 5}))
	assert.Equal(t, "overworld", r.WorldName(chunk.Key{X: -2, Y: 0}))
	assert.Equal(t, 2, r.Len())

	region, ok := r.GateRegion(chunk.Key{X: -2, Y: 0})
	assert.True(t, ok)
	assert.Equal(t, "bridge", region)

	_, ok = r.GateRegion(chunk.Key{X: 0, Y: 0})
	assert.False(t, ok)
}

func TestRegionsFromManifest(t *testing.T) {
	m := config.DefaultManifest()
	m.SpecialRegions = []config.SpecialRegion{
		{ChunkX: 10, ChunkY: 0, World: "boss_hall", Gate: "boss"},
		{ChunkX: 3, ChunkY: 4, World: "shrine"},
		{ChunkX: -1, ChunkY: -1, Gate: "cellar"},
	}

	r := RegionsFromManifest(m)

	tests := []struct {
		name       string
		key        chunk.Key
		world      string
		gate       string
		expectGate bool
	}{
		{name: "override with gate", key: chunk.Key{X: 10, Y: 0}, world: "boss_hall", gate: "boss", expectGate: true},
		{name: "override only", key: chunk.Key{X: 3, Y: 4}, world: "shrine"},
		{name: "gate only", key: chunk.Key{X: -1, Y: -1}, world: "overworld", gate: "cellar", expectGate: true},
		{name: "ordinary chunk", key: chunk.Key{X: 0, Y: 0}, world: "overworld"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.world, r.WorldName(tt.key))
			gate, ok := r.GateRegion(tt.key)
			assert.Equal(t, tt.expectGate, ok)
			assert.Equal(t, tt.gate, gate)
		})
	}
}

func TestParseTopology(t *testing.T) {
	assert.Equal(t, Linear, ParseTopology("linear"))
	assert.Equal(t, Linear, ParseTopology("LINEAR"))
	assert.Equal(t, Planar, ParseTopology("planar"))
	assert.Equal(t, Planar, ParseTopology("spiral"))
	assert.Equal(t, "linear", Linear.String())
	assert.Equal(t, "planar", Planar.String())
}

func TestNewManager_NormalisesRadii(t *testing.T) {
	h := newHarness(t, harnessOptions{cfg: Config{LoadRadius: 3, PreloadRadius: 1}})
	assert.Equal(t, 3, h.manager.Config().PreloadRadius)
}
