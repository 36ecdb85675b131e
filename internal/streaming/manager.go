// Package streaming keeps the chunks around a moving viewer resident.
//
// The Manager is not safe for concurrent use. It belongs to the foreground
// loop, which calls OnViewerMoved when the viewer changes chunk and Tick once
// per frame. Background work only reaches it through the loader's completion
// queue, drained inside Tick.
package streaming

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/VoidMesh/worldstream/internal/chunk"
	"github.com/VoidMesh/worldstream/internal/config"
	"github.com/VoidMesh/worldstream/internal/coords"
	"github.com/VoidMesh/worldstream/internal/loader"
	"github.com/VoidMesh/worldstream/internal/logging"
)

// ErrRegionLocked is returned when the viewer tries to enter a gated chunk
// whose region has not been unlocked.
var ErrRegionLocked = errors.New("region is locked")

// ChunkLoader is the part of *loader.Loader the manager drives.
type ChunkLoader interface {
	LoadAsync(chunkX, chunkY int, worldName string) *loader.Handle
	Cancel(key chunk.Key) bool
	CancelAll() int
	IsInFlight(key chunk.Key) bool
	InFlightKeys() []chunk.Key
	Drain() []loader.Completion
}

// Topology constrains viewer positions.
type Topology int

const (
	// Planar worlds extend in both axes.
	Planar Topology = iota
	// Linear worlds are a single row of chunks; Y is always 0.
	Linear
)

func (t Topology) String() string {
	if t == Linear {
		return config.TopologyLinear
	}
	return config.TopologyPlanar
}

// ParseTopology maps manifest names to a Topology. Unknown names are Planar.
func ParseTopology(s string) Topology {
	if strings.EqualFold(s, config.TopologyLinear) {
		return Linear
	}
	return Planar
}

// Config holds the radii, measured in Chebyshev distance from the viewer.
// Chunks within LoadRadius stay resident and attached. Chunks within
// PreloadRadius are requested ahead of need. When CacheRadius exceeds
// LoadRadius, chunks that leave LoadRadius but stay within CacheRadius are
// detached and kept as CACHED instead of being unloaded. With CacheRadius
// below PreloadRadius, preloaded chunks past LoadRadius are unloaded on every
// move and requested again; CacheRadius >= PreloadRadius keeps them.
type Config struct {
	LoadRadius    int
	PreloadRadius int
	CacheRadius   int
	Topology      Topology
}

func DefaultConfig() Config {
	return Config{
		LoadRadius:    1,
		PreloadRadius: 2,
		CacheRadius:   0,
		Topology:      Planar,
	}
}

// Stats is a snapshot of manager counters.
type Stats struct {
	Viewer       *chunk.Key     `json:"viewer,omitempty"`
	Resident     int            `json:"resident"`
	Attached     int            `json:"attached"`
	InFlight     int            `json:"in_flight"`
	States       map[string]int `json:"states"`
	Moves        int64          `json:"moves"`
	RefusedMoves int64          `json:"refused_moves"`
	Published    int64          `json:"published"`
	Discarded    int64          `json:"discarded"`
	FailedLoads  int64          `json:"failed_loads"`
	Unloaded     int64          `json:"unloaded"`
	Softened     int64          `json:"softened"`
	Promoted     int64          `json:"promoted"`
}

// Manager orchestrates loading and unloading around the viewer.
type Manager struct {
	cfg     Config
	sys     *coords.System
	loader  ChunkLoader
	states  *chunk.StateManager
	regions *RegionMap
	gate    Gate
	hooks   Hooks
	logger  logging.LoggerInterface

	viewer    chunk.Key
	hasViewer bool
	loaded    map[chunk.Key]*chunk.Chunk
	attached  map[chunk.Key]bool

	stats Stats
}

// NewManager wires a manager. A nil gate keeps every gated region locked.
func NewManager(cfg Config, sys *coords.System, l ChunkLoader, states *chunk.StateManager,
	regions *RegionMap, gate Gate, hooks Hooks, logger logging.LoggerInterface) *Manager {
	if cfg.LoadRadius < 0 {
		cfg.LoadRadius = 0
	}
	if cfg.PreloadRadius < cfg.LoadRadius {
		cfg.PreloadRadius = cfg.LoadRadius
	}
	if gate == nil {
		gate = closedGate{}
	}

	m := &Manager{
		cfg:      cfg,
		sys:      sys,
		loader:   l,
		states:   states,
		regions:  regions,
		gate:     gate,
		hooks:    hooks.withDefaults(),
		logger:   logger.With("component", "streaming-manager"),
		loaded:   make(map[chunk.Key]*chunk.Chunk),
		attached: make(map[chunk.Key]bool),
	}
	m.logger.Info("Streaming manager created",
		"default_world", regions.DefaultWorld(),
		"load_radius", cfg.LoadRadius,
		"preload_radius", cfg.PreloadRadius,
		"cache_radius", cfg.CacheRadius,
		"topology", cfg.Topology.String(),
	)
	return m
}

// Config returns the effective configuration.
func (m *Manager) Config() Config {
	return m.cfg
}

// Viewer returns the viewer's chunk, if it has been placed.
func (m *Manager) Viewer() (chunk.Key, bool) {
	return m.viewer, m.hasViewer
}

// ResolveWorldName returns the world name whose template backs the chunk.
func (m *Manager) ResolveWorldName(chunkX, chunkY int) string {
	return m.regions.WorldName(chunk.Key{X: chunkX, Y: chunkY})
}

// OnViewerMoved records the viewer's new chunk and recomputes the resident
// set from scratch. It returns false with a nil error when the position did
// not change, and false with ErrRegionLocked when the destination is a gated
// region that is still locked; the viewer stays where it was.
func (m *Manager) OnViewerMoved(chunkX, chunkY int) (bool, error) {
	key := m.clamp(chunkX, chunkY)
	if m.hasViewer && key == m.viewer {
		return false, nil
	}

	if region, gated := m.regions.GateRegion(key); gated && !m.gate.IsRegionUnlocked(region) {
		m.stats.RefusedMoves++
		m.logger.Info("Refused move into locked region",
			"chunk_x", key.X, "chunk_y", key.Y, "region", region)
		return false, fmt.Errorf("chunk %s region %q: %w", key, region, ErrRegionLocked)
	}

	m.viewer = key
	m.hasViewer = true
	m.stats.Moves++
	m.logger.Debug("Viewer moved", "chunk_x", key.X, "chunk_y", key.Y)

	m.reconcile()
	return true, nil
}

// Tick publishes finished loads and retries loads that were refused
// admission. Call it once per frame from the foreground loop.
func (m *Manager) Tick() {
	for _, c := range m.loader.Drain() {
		m.handleCompletion(c)
	}
	if m.hasViewer {
		m.evictLocked()
		m.requestLoads()
	}
}

// evictLocked unloads resident chunks whose region has been locked again.
func (m *Manager) evictLocked() {
	for _, key := range m.sortedLoadedKeys() {
		if m.locked(key) {
			m.unloadChunk(key)
		}
	}
}

func (m *Manager) handleCompletion(c loader.Completion) {
	if c.Err != nil {
		m.stats.FailedLoads++
		m.forget(c.Key)
		return
	}

	if _, present := m.loaded[c.Key]; present || !m.wanted(c.Key) || c.WorldName != m.regions.WorldName(c.Key) {
		m.stats.Discarded++
		c.Chunk.Unload()
		if !present && !m.loader.IsInFlight(c.Key) {
			m.states.Transition(c.Key, chunk.Unloaded)
			m.forget(c.Key)
		}
		m.logger.Debug("Discarded stale chunk", "chunk_x", c.Key.X, "chunk_y", c.Key.Y, "world", c.WorldName)
		return
	}

	m.loaded[c.Key] = c.Chunk
	m.states.Transition(c.Key, chunk.Loaded)
	m.attach(c.Key, c.Chunk)
	m.stats.Published++
}

// reconcile applies the radii around the current viewer position.
func (m *Manager) reconcile() {
	for _, key := range m.sortedLoadedKeys() {
		d := key.Chebyshev(m.viewer)
		switch {
		case m.locked(key):
			m.unloadChunk(key)
		case d <= m.cfg.LoadRadius:
			m.promote(key)
		case d <= m.cfg.CacheRadius:
			m.soften(key)
		default:
			m.unloadChunk(key)
		}
	}

	for _, key := range m.loader.InFlightKeys() {
		if !m.wanted(key) {
			m.loader.Cancel(key)
			m.forget(key)
		}
	}

	m.requestLoads()
}

// requestLoads asks for every missing key, nearest first. The first
// admission refusal ends the pass; Tick retries.
func (m *Manager) requestLoads() {
	for _, key := range m.ring(m.cfg.PreloadRadius) {
		if _, ok := m.loaded[key]; ok {
			continue
		}
		if m.loader.IsInFlight(key) || m.locked(key) {
			continue
		}

		h := m.loader.LoadAsync(key.X, key.Y, m.regions.WorldName(key))
		_, err := h.Result()
		switch {
		case errors.Is(err, loader.ErrAdmissionRejected):
			return
		case errors.Is(err, loader.ErrLoaderClosed):
			m.logger.Warn("Load request refused", "chunk_x", key.X, "chunk_y", key.Y, "error", err)
			return
		}
	}
}

// ring lists keys within radius of the viewer sorted by distance, then by
// row and column.
func (m *Manager) ring(radius int) []chunk.Key {
	keys := make([]chunk.Key, 0, (2*radius+1)*(2*radius+1))
	for dy := -radius; dy <= radius; dy++ {
		if m.cfg.Topology == Linear && dy != 0 {
			continue
		}
		for dx := -radius; dx <= radius; dx++ {
			keys = append(keys, chunk.Key{X: m.viewer.X + dx, Y: m.viewer.Y + dy})
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		di, dj := keys[i].Chebyshev(m.viewer), keys[j].Chebyshev(m.viewer)
		if di != dj {
			return di < dj
		}
		return keys[i].Less(keys[j])
	})
	return keys
}

func (m *Manager) wanted(key chunk.Key) bool {
	if !m.hasViewer || m.locked(key) {
		return false
	}
	if m.cfg.Topology == Linear && key.Y != 0 {
		return false
	}
	return key.Chebyshev(m.viewer) <= m.cfg.PreloadRadius
}

// locked reports a gated key whose region is closed. Such keys are never
// loaded, so they read as absent and impassable.
func (m *Manager) locked(key chunk.Key) bool {
	region, gated := m.regions.GateRegion(key)
	return gated && !m.gate.IsRegionUnlocked(region)
}

func (m *Manager) clamp(chunkX, chunkY int) chunk.Key {
	if m.cfg.Topology == Linear {
		chunkY = 0
	}
	return chunk.Key{X: chunkX, Y: chunkY}
}

func (m *Manager) attach(key chunk.Key, c *chunk.Chunk) {
	if m.attached[key] {
		return
	}
	m.hooks.Renderer.Attach(c)
	m.attached[key] = true
}

func (m *Manager) detach(key chunk.Key, c *chunk.Chunk) {
	if !m.attached[key] {
		return
	}
	m.hooks.Renderer.Detach(c)
	delete(m.attached, key)
}

// soften turns a LOADED chunk into a CACHED one: data kept, renderer detached.
func (m *Manager) soften(key chunk.Key) {
	if m.states.State(key) == chunk.Cached {
		return
	}
	m.detach(key, m.loaded[key])
	m.states.Transition(key, chunk.Cached)
	m.stats.Softened++
}

// promote brings a CACHED chunk back to LOADED.
func (m *Manager) promote(key chunk.Key) {
	if m.states.State(key) != chunk.Cached {
		return
	}
	m.states.Transition(key, chunk.Loaded)
	m.attach(key, m.loaded[key])
	m.stats.Promoted++
}

// unloadChunk tears a resident chunk down: it leaves the table first, then
// its entities are cleaned up, then the renderer lets go, then the chunk
// releases its data.
func (m *Manager) unloadChunk(key chunk.Key) {
	c, ok := m.loaded[key]
	if !ok {
		return
	}
	m.loader.Cancel(key)

	m.states.Transition(key, chunk.Unloading)
	delete(m.loaded, key)
	m.hooks.Cleaner.RemoveEntitiesIn(c.Bounds())
	m.detach(key, c)
	c.Unload()
	m.states.Transition(key, chunk.Unloaded)
	m.forget(key)

	m.stats.Unloaded++
	m.logger.Debug("Chunk unloaded", "chunk_x", key.X, "chunk_y", key.Y, "world", c.WorldName())
}

// forget drops an UNLOADED key from the ledger so it does not grow with the
// visited area. Absent keys read as UNLOADED.
func (m *Manager) forget(key chunk.Key) {
	if m.loader.IsInFlight(key) {
		return
	}
	if m.states.State(key) == chunk.Unloaded {
		m.states.Clear(key)
	}
}

// findChunk returns the resident chunk covering the world point. The key is
// the shared grid cell of the point. When the chunk there does not cover the
// point, the lookup steps once to the neighbour on the side of the chunk's
// bounds the point lies beyond. The part of a cell an override chunk leaves
// uncovered therefore resolves to nothing.
func (m *Manager) findChunk(worldX, worldY float64) (*chunk.Chunk, bool) {
	key := m.ChunkCoordinateOf(worldX, worldY)
	c, ok := m.loaded[key]
	if !ok {
		return nil, false
	}
	if c.Contains(worldX, worldY) {
		return c, true
	}

	next := key
	b := c.Bounds()
	switch {
	case worldX < b.MinX:
		next.X--
	case worldX >= b.MaxX:
		next.X++
	}
	switch {
	case worldY < b.MinY:
		next.Y--
	case worldY >= b.MaxY:
		next.Y++
	}
	if next == key {
		return nil, false
	}
	c, ok = m.loaded[next]
	if !ok || !c.Contains(worldX, worldY) {
		return nil, false
	}
	return c, true
}

// IsPassable fails closed: a point with no resident chunk is blocked.
func (m *Manager) IsPassable(worldX, worldY float64) bool {
	c, ok := m.findChunk(worldX, worldY)
	if !ok {
		return false
	}
	return c.IsPassable(worldX, worldY)
}

// SetTilePassable overrides the tile under the world point. It reports
// false when no resident chunk covers the point.
func (m *Manager) SetTilePassable(worldX, worldY float64, passable bool) bool {
	c, ok := m.findChunk(worldX, worldY)
	if !ok {
		return false
	}
	tx, ty := c.WorldToTile(worldX, worldY)
	c.SetTilePassable(tx, ty, passable)
	return true
}

// ChunkCoordinateOf returns the chunk key of the shared grid cell holding a
// world point.
func (m *Manager) ChunkCoordinateOf(worldX, worldY float64) chunk.Key {
	cx, cy := m.sys.GridCell(worldX, worldY)
	return chunk.Key{X: cx, Y: cy}
}

// Chunk returns the resident chunk for key.
func (m *Manager) Chunk(key chunk.Key) (*chunk.Chunk, bool) {
	c, ok := m.loaded[key]
	return c, ok
}

// ChunkState returns the ledger state for key.
func (m *Manager) ChunkState(key chunk.Key) chunk.State {
	return m.states.State(key)
}

// LoadedKeys returns the resident keys ordered by chunk.Key.Less.
func (m *Manager) LoadedKeys() []chunk.Key {
	return m.sortedLoadedKeys()
}

// IsAttached reports whether the renderer currently holds key.
func (m *Manager) IsAttached(key chunk.Key) bool {
	return m.attached[key]
}

func (m *Manager) Stats() Stats {
	s := m.stats
	if m.hasViewer {
		v := m.viewer
		s.Viewer = &v
	}
	s.Resident = len(m.loaded)
	s.Attached = len(m.attached)
	s.InFlight = len(m.loader.InFlightKeys())
	s.States = make(map[string]int)
	for state, n := range m.states.Counts() {
		s.States[state.String()] = n
	}
	return s
}

// Close cancels every in-flight load and unloads every resident chunk.
func (m *Manager) Close() {
	m.loader.CancelAll()
	for _, key := range m.sortedLoadedKeys() {
		m.unloadChunk(key)
	}
	for _, c := range m.loader.Drain() {
		if c.Chunk != nil {
			c.Chunk.Unload()
		}
	}
	m.hasViewer = false
	m.logger.Info("Streaming manager closed")
}

func (m *Manager) sortedLoadedKeys() []chunk.Key {
	keys := make([]chunk.Key, 0, len(m.loaded))
	for k := range m.loaded {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Less(keys[j]) })
	return keys
}
