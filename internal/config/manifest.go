package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest describes the worlds the streamer knows about: chunk geometry per
// world name and the special regions that remap or gate chunk coordinates of
// the default world.
type Manifest struct {
	TileSize          int             `yaml:"tile_size"`
	DefaultWorld      string          `yaml:"default_world"`
	DefaultDimensions Dimensions      `yaml:"default_dimensions"`
	Topology          string          `yaml:"topology"`
	Worlds            []WorldEntry    `yaml:"worlds"`
	SpecialRegions    []SpecialRegion `yaml:"special_regions"`
}

type Dimensions struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type WorldEntry struct {
	Name   string `yaml:"name"`
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
}

// SpecialRegion overrides the world name used for one chunk and optionally
// gates entry behind a region id.
type SpecialRegion struct {
	ChunkX int    `yaml:"chunk_x"`
	ChunkY int    `yaml:"chunk_y"`
	World  string `yaml:"world"`
	Gate   string `yaml:"gate"`
}

const (
	TopologyPlanar = "planar"
	TopologyLinear = "linear"
)

// DefaultManifest is used when no manifest file exists.
func DefaultManifest() Manifest {
	return Manifest{
		TileSize:          32,
		DefaultWorld:      "overworld",
		DefaultDimensions: Dimensions{Width: 16, Height: 16},
		Topology:          TopologyPlanar,
	}
}

// LoadManifest reads a YAML manifest. A missing file yields DefaultManifest;
// zero-valued fields in a present file are filled from the defaults.
func LoadManifest(path string) (Manifest, error) {
	m := DefaultManifest()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return m, nil
		}
		return m, fmt.Errorf("failed to read manifest: %w", err)
	}

	var parsed Manifest
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return m, fmt.Errorf("worlds.yaml: %w", err)
	}

	if parsed.TileSize == 0 {
		parsed.TileSize = m.TileSize
	}
	if parsed.DefaultWorld == "" {
		parsed.DefaultWorld = m.DefaultWorld
	}
	if parsed.DefaultDimensions.Width == 0 || parsed.DefaultDimensions.Height == 0 {
		parsed.DefaultDimensions = m.DefaultDimensions
	}
	if parsed.Topology == "" {
		parsed.Topology = m.Topology
	}

	if err := parsed.Validate(); err != nil {
		return m, err
	}
	return parsed, nil
}

// Validate checks the manifest for values the streamer cannot work with.
func (m Manifest) Validate() error {
	if m.TileSize <= 0 {
		return fmt.Errorf("invalid tile_size %d", m.TileSize)
	}
	if m.DefaultDimensions.Width <= 0 || m.DefaultDimensions.Height <= 0 {
		return fmt.Errorf("invalid default_dimensions %dx%d", m.DefaultDimensions.Width, m.DefaultDimensions.Height)
	}
	if m.Topology != TopologyPlanar && m.Topology != TopologyLinear {
		return fmt.Errorf("unknown topology %q", m.Topology)
	}

	seen := make(map[string]bool, len(m.Worlds))
	for _, w := range m.Worlds {
		if w.Name == "" {
			return errors.New("world entry without name")
		}
		if seen[w.Name] {
			return fmt.Errorf("duplicate world %q", w.Name)
		}
		seen[w.Name] = true
		if w.Width <= 0 || w.Height <= 0 {
			return fmt.Errorf("world %q: invalid dimensions %dx%d", w.Name, w.Width, w.Height)
		}
		// Override chunks live inside one cell of the default grid.
		if w.Width > m.DefaultDimensions.Width || w.Height > m.DefaultDimensions.Height {
			return fmt.Errorf("world %q: %dx%d does not fit the %dx%d default chunk",
				w.Name, w.Width, w.Height, m.DefaultDimensions.Width, m.DefaultDimensions.Height)
		}
		if w.Name == m.DefaultWorld && (w.Width != m.DefaultDimensions.Width || w.Height != m.DefaultDimensions.Height) {
			return fmt.Errorf("world %q: default world must use default_dimensions", w.Name)
		}
	}

	regions := make(map[[2]int]bool, len(m.SpecialRegions))
	for _, r := range m.SpecialRegions {
		at := [2]int{r.ChunkX, r.ChunkY}
		if regions[at] {
			return fmt.Errorf("duplicate special region at %d,%d", r.ChunkX, r.ChunkY)
		}
		regions[at] = true
		if r.World == "" && r.Gate == "" {
			return fmt.Errorf("special region %d,%d has neither world nor gate", r.ChunkX, r.ChunkY)
		}
	}
	return nil
}
