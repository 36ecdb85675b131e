// Package tiled loads world templates from Tiled JSON map exports.
//
// A world named "cave" is read from <Dir>/cave.json. Tile layers become
// template layers in file order. Object groups and image layers are ignored.
package tiled

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/VoidMesh/worldstream/internal/logging"
	"github.com/VoidMesh/worldstream/internal/template"
)

const collisionLayerName = "collision"

type tiledMap struct {
	Width      int          `json:"width"`
	Height     int          `json:"height"`
	TileWidth  int          `json:"tilewidth"`
	TileHeight int          `json:"tileheight"`
	Layers     []layer      `json:"layers"`
	Tilesets   []tilesetRef `json:"tilesets"`
}

type layer struct {
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Data       []uint32   `json:"data"`
	Properties []property `json:"properties"`
}

type tilesetRef struct {
	FirstGID  uint32 `json:"firstgid"`
	Source    string `json:"source"`
	Name      string `json:"name"`
	TileCount uint32 `json:"tilecount"`
	Tiles     []tile `json:"tiles"`
}

type tilesetFile struct {
	Name      string `json:"name"`
	TileCount uint32 `json:"tilecount"`
	Tiles     []tile `json:"tiles"`
}

type tile struct {
	ID         uint32     `json:"id"`
	Type       string     `json:"type"`
	Class      string     `json:"class"`
	Properties []property `json:"properties"`
}

type property struct {
	Name  string      `json:"name"`
	Type  string      `json:"type"`
	Value interface{} `json:"value"`
}

// Loader reads Tiled JSON maps from a directory.
type Loader struct {
	Dir    string
	Logger logging.LoggerInterface
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, logger logging.LoggerInterface) *Loader {
	return &Loader{Dir: dir, Logger: logger.With("component", "tiled-loader")}
}

// LoadTemplate implements template.Loader. A missing map file yields
// template.ErrTemplateNotFound so a Chain can fall through.
func (l *Loader) LoadTemplate(ctx context.Context, worldName string) (*template.WorldTemplate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	path := filepath.Join(l.Dir, worldName+".json")
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%s: %w", path, template.ErrTemplateNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read map file: %w", err)
	}

	var m tiledMap
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse map %s: %w", path, err)
	}

	tmpl := &template.WorldTemplate{
		Name:   worldName,
		Width:  m.Width,
		Height: m.Height,
	}

	for _, ly := range m.Layers {
		if ly.Type != "tilelayer" {
			continue
		}
		tiles := make([]uint32, len(ly.Data))
		copy(tiles, ly.Data)
		tmpl.Layers = append(tmpl.Layers, template.Layer{
			Name:      ly.Name,
			Collision: ly.Name == collisionLayerName || boolProperty(ly.Properties, "collision"),
			Tiles:     tiles,
		})
	}

	mapDir := filepath.Dir(path)
	for _, ref := range m.Tilesets {
		ts, err := l.resolveTileset(mapDir, ref)
		if err != nil {
			return nil, err
		}
		tmpl.Tilesets = append(tmpl.Tilesets, ts)
	}

	if l.Logger != nil {
		l.Logger.Debug("Parsed Tiled map",
			"world", worldName,
			"width", m.Width,
			"height", m.Height,
			"layers", len(tmpl.Layers),
			"tilesets", len(tmpl.Tilesets),
		)
	}
	return tmpl, nil
}

func (l *Loader) resolveTileset(mapDir string, ref tilesetRef) (template.Tileset, error) {
	name, count, tiles := ref.Name, ref.TileCount, ref.Tiles

	if ref.Source != "" {
		path := filepath.Join(mapDir, ref.Source)
		data, err := os.ReadFile(path)
		if err != nil {
			return template.Tileset{}, fmt.Errorf("failed to read tileset %s: %w", ref.Source, err)
		}
		var ext tilesetFile
		if err := json.Unmarshal(data, &ext); err != nil {
			return template.Tileset{}, fmt.Errorf("failed to parse tileset %s: %w", ref.Source, err)
		}
		name, count, tiles = ext.Name, ext.TileCount, ext.Tiles
	}

	ts := template.Tileset{
		Name:      name,
		FirstGID:  ref.FirstGID,
		TileCount: count,
		Tiles:     make(map[uint32]template.TileProperties, len(tiles)),
	}
	for _, t := range tiles {
		kind := t.Type
		if kind == "" {
			kind = t.Class
		}
		props := template.TileProperties{
			Kind:       kind,
			Blocked:    boolProperty(t.Properties, "blocked") || boolProperty(t.Properties, "collides"),
			Properties: stringProperties(t.Properties),
		}
		ts.Tiles[t.ID] = props
		// Tilesets that omit tilecount still need a range wide enough for
		// the tiles they describe.
		if t.ID >= ts.TileCount {
			ts.TileCount = t.ID + 1
		}
	}
	return ts, nil
}

func boolProperty(props []property, name string) bool {
	for _, p := range props {
		if p.Name != name {
			continue
		}
		switch v := p.Value.(type) {
		case bool:
			return v
		case string:
			b, _ := strconv.ParseBool(v)
			return b
		}
	}
	return false
}

func stringProperties(props []property) map[string]string {
	if len(props) == 0 {
		return nil
	}
	out := make(map[string]string, len(props))
	for _, p := range props {
		out[p.Name] = fmt.Sprint(p.Value)
	}
	return out
}
