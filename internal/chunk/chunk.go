// Package chunk holds the per-chunk passability data, the chunk key and the
// chunk state ledger.
package chunk

import (
	"context"
	"fmt"
	"math"

	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/template"
)

// TemplateSource hands out shared world templates. *template.Cache satisfies it.
type TemplateSource interface {
	GetOrBuild(ctx context.Context, worldName string) (*template.WorldTemplate, error)
}

// Rect is a world-space rectangle, min-inclusive and max-exclusive.
type Rect struct {
	MinX float64 `json:"min_x"`
	MinY float64 `json:"min_y"`
	MaxX float64 `json:"max_x"`
	MaxY float64 `json:"max_y"`
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x < r.MaxX && y >= r.MinY && y < r.MaxY
}

// Chunk is one (world name, chunk x, chunk y) instance. The passability grid
// is private to the chunk and starts as a copy derived from the shared
// template. After publication a chunk is only touched by the foreground loop.
type Chunk struct {
	key       Key
	worldName string
	width     int
	height    int
	tileSize  float64
	offsetX   float64
	offsetY   float64
	passable  []bool
	tmpl      *template.WorldTemplate
	loaded    bool
}

// New builds a chunk from the world template, triggering the template build
// if this is the first chunk of its world name.
func New(ctx context.Context, key Key, worldName string, source TemplateSource, sys *coords.System) (*Chunk, error) {
	tmpl, err := source.GetOrBuild(ctx, worldName)
	if err != nil {
		return nil, err
	}

	dims := sys.Dimensions(worldName)
	if dims.Width != tmpl.Width || dims.Height != tmpl.Height {
		return nil, fmt.Errorf("template %q is %dx%d tiles but chunk geometry is %dx%d",
			worldName, tmpl.Width, tmpl.Height, dims.Width, dims.Height)
	}

	// Overrides sit in their owning key's cell of the shared grid.
	offsetX, offsetY := sys.GridOrigin(key.X, key.Y)
	c := &Chunk{
		key:       key,
		worldName: worldName,
		width:     tmpl.Width,
		height:    tmpl.Height,
		tileSize:  float64(sys.TileSize()),
		offsetX:   offsetX,
		offsetY:   offsetY,
		passable:  make([]bool, tmpl.Width*tmpl.Height),
		tmpl:      tmpl,
	}

	for y := 0; y < tmpl.Height; y++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for x := 0; x < tmpl.Width; x++ {
			c.passable[y*tmpl.Width+x] = !tmpl.Blocked(x, y)
		}
	}

	c.loaded = true
	return c, nil
}

func (c *Chunk) Key() Key          { return c.key }
func (c *Chunk) WorldName() string { return c.worldName }
func (c *Chunk) Width() int        { return c.width }
func (c *Chunk) Height() int       { return c.height }
func (c *Chunk) IsLoaded() bool    { return c.loaded }

// Offset returns the world-space origin of the chunk.
func (c *Chunk) Offset() (x, y float64) {
	return c.offsetX, c.offsetY
}

// Bounds returns the world-space rectangle the chunk covers.
func (c *Chunk) Bounds() Rect {
	return Rect{
		MinX: c.offsetX,
		MinY: c.offsetY,
		MaxX: c.offsetX + float64(c.width)*c.tileSize,
		MaxY: c.offsetY + float64(c.height)*c.tileSize,
	}
}

// Contains reports whether the world point falls on one of this chunk's tiles.
func (c *Chunk) Contains(worldX, worldY float64) bool {
	tx, ty := c.WorldToTile(worldX, worldY)
	return c.inRange(tx, ty)
}

// WorldToTile converts a world point to local tile coordinates. The result
// may be out of range.
func (c *Chunk) WorldToTile(worldX, worldY float64) (tileX, tileY int) {
	return int(math.Floor((worldX - c.offsetX) / c.tileSize)),
		int(math.Floor((worldY - c.offsetY) / c.tileSize))
}

// TileToWorld returns the world-space origin of a local tile.
func (c *Chunk) TileToWorld(tileX, tileY int) (worldX, worldY float64) {
	return c.offsetX + float64(tileX)*c.tileSize, c.offsetY + float64(tileY)*c.tileSize
}

// IsPassable fails closed: an unloaded chunk or a point outside the chunk is
// never passable. Callers resolve the neighbouring chunk themselves.
func (c *Chunk) IsPassable(worldX, worldY float64) bool {
	if !c.loaded {
		return false
	}
	tx, ty := c.WorldToTile(worldX, worldY)
	if !c.inRange(tx, ty) {
		return false
	}
	return c.passable[ty*c.width+tx]
}

// SetTilePassable overrides one cell of this chunk's grid. Out-of-range
// tiles and unloaded chunks are ignored. The shared template is untouched.
func (c *Chunk) SetTilePassable(tileX, tileY int, passable bool) {
	if !c.loaded || !c.inRange(tileX, tileY) {
		return
	}
	c.passable[tileY*c.width+tileX] = passable
}

// PassabilityRows renders the grid one string per row, '.' for passable and
// '#' for blocked. It is nil once unloaded.
func (c *Chunk) PassabilityRows() []string {
	if !c.loaded {
		return nil
	}
	rows := make([]string, c.height)
	row := make([]byte, c.width)
	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			if c.passable[y*c.width+x] {
				row[x] = '.'
			} else {
				row[x] = '#'
			}
		}
		rows[y] = string(row)
	}
	return rows
}

// TileAt returns the raw template tile id of a layer cell.
func (c *Chunk) TileAt(layer, tileX, tileY int) (uint32, bool) {
	if !c.loaded {
		return 0, false
	}
	return c.tmpl.TileAt(layer, tileX, tileY)
}

// TileProperties resolves a tile id against the chunk's tilesets.
func (c *Chunk) TileProperties(gid uint32) (template.TileProperties, bool) {
	if !c.loaded {
		return template.TileProperties{}, false
	}
	return c.tmpl.TileProperties(gid)
}

// LayerCount returns the number of template layers, zero once unloaded.
func (c *Chunk) LayerCount() int {
	if !c.loaded {
		return 0
	}
	return len(c.tmpl.Layers)
}

// Unload drops the grid and template references. Calling it again is a no-op.
func (c *Chunk) Unload() {
	if !c.loaded {
		return
	}
	c.loaded = false
	c.passable = nil
	c.tmpl = nil
}

func (c *Chunk) inRange(tileX, tileY int) bool {
	return tileX >= 0 && tileY >= 0 && tileX < c.width && tileY < c.height
}
