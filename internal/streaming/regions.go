package streaming

import (
	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/config"
)

// Gate answers whether a locked region has been opened.
type Gate interface {
	IsRegionUnlocked(regionID string) bool
}

type closedGate struct{}

func (closedGate) IsRegionUnlocked(string) bool { return false }

// RegionMap resolves chunk keys to world names and gate regions. Special
// regions share the default world's chunk coordinate space. It is built once
// at startup and read-only afterwards.
type RegionMap struct {
	defaultWorld string
	overrides    map[chunk.Key]string
	gated        map[chunk.Key]string
}

func NewRegionMap(defaultWorld string) *RegionMap {
	return &RegionMap{
		defaultWorld: defaultWorld,
		overrides:    make(map[chunk.Key]string),
		gated:        make(map[chunk.Key]string),
	}
}

// RegionsFromManifest builds the map declared in a world manifest.
func RegionsFromManifest(m config.Manifest) *RegionMap {
	r := NewRegionMap(m.DefaultWorld)
	for _, sr := range m.SpecialRegions {
		key := chunk.Key{X: sr.ChunkX, Y: sr.ChunkY}
		if sr.World != "" {
			r.Override(key, sr.World)
		}
		if sr.Gate != "" {
			r.SetGate(key, sr.Gate)
		}
	}
	return r
}

// Override maps key to an alternate world name.
func (r *RegionMap) Override(key chunk.Key, worldName string) *RegionMap {
	r.overrides[key] = worldName
	return r
}

// SetGate makes key refuse the viewer until regionID is unlocked.
func (r *RegionMap) SetGate(key chunk.Key, regionID string) *RegionMap {
	r.gated[key] = regionID
	return r
}

func (r *RegionMap) DefaultWorld() string {
	return r.defaultWorld
}

// WorldName returns the override for key, or the default world name.
func (r *RegionMap) WorldName(key chunk.Key) string {
	if name, ok := r.overrides[key]; ok {
		return name
	}
	return r.defaultWorld
}

// GateRegion returns the region id guarding key, if any.
func (r *RegionMap) GateRegion(key chunk.Key) (string, bool) {
	id, ok := r.gated[key]
	return id, ok
}

// Len returns the number of keys with an override or a gate.
func (r *RegionMap) Len() int {
	seen := make(map[chunk.Key]struct{}, len(r.overrides)+len(r.gated))
	for k := range r.overrides {
		seen[k] = struct{}{}
	}
	for k := range r.gated {
		seen[k] = struct{}{}
	}
	return len(seen)
}
